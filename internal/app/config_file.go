package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/Inkubator-IT/admin/internal/content"
    "github.com/Inkubator-IT/admin/internal/sanitize"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to the dotted flag names.
type FileConfig struct {
    Input  string `yaml:"input" json:"input"`
    Output string `yaml:"output" json:"output"`
    Format string `yaml:"format" json:"format"`

    Limits struct {
        MaxDepth int `yaml:"maxDepth" json:"maxDepth"`
        MaxNodes int `yaml:"maxNodes" json:"maxNodes"`
    } `yaml:"limits" json:"limits"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        MaxCount    int           `yaml:"maxCount" json:"maxCount"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
    } `yaml:"cache" json:"cache"`

    Manifest    *bool  `yaml:"manifest" json:"manifest"`
    Envelope    bool   `yaml:"envelope" json:"envelope"`
    BlogBody    string `yaml:"blogBody" json:"blogBody"`
    MetricsFile string `yaml:"metricsFile" json:"metricsFile"`
    DryRun      bool   `yaml:"dryRun" json:"dryRun"`
    Verbose     bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// Flag defaults that a config file may replace.
const (
    inputDefault    = "-"
    outputDefault   = "-"
    cacheDirDefault = ".admin-sanitize-cache"
)

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default. Callers restore
// explicitly given flags afterwards.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if (cfg.InputPath == "" || cfg.InputPath == inputDefault) && fc.Input != "" { cfg.InputPath = fc.Input }
    if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output != "" { cfg.OutputPath = fc.Output }
    if (cfg.Format == "" || cfg.Format == FormatAuto) && fc.Format != "" { cfg.Format = Format(strings.ToLower(strings.TrimSpace(fc.Format))) }

    if (cfg.MaxDepth == 0 || cfg.MaxDepth == sanitize.DefaultMaxDepth) && fc.Limits.MaxDepth > 0 { cfg.MaxDepth = fc.Limits.MaxDepth }
    if (cfg.MaxNodes == 0 || cfg.MaxNodes == sanitize.DefaultMaxNodes) && fc.Limits.MaxNodes > 0 { cfg.MaxNodes = fc.Limits.MaxNodes }

    if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if cfg.CacheMaxCount == 0 && fc.Cache.MaxCount > 0 { cfg.CacheMaxCount = fc.Cache.MaxCount }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }

    // Manifest defaults on; the file may turn it off
    if fc.Manifest != nil { cfg.Manifest = *fc.Manifest }
    if !cfg.Envelope && fc.Envelope { cfg.Envelope = true }
    if cfg.BlogBody == "" && fc.BlogBody != "" { cfg.BlogBody = content.BodyFormat(strings.ToLower(trim(fc.BlogBody))) }
    if cfg.MetricsFile == "" && fc.MetricsFile != "" { cfg.MetricsFile = fc.MetricsFile }
    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if trim(cfg.InputPath) == "" {
        return errors.New("config: input path is required")
    }
    if trim(cfg.OutputPath) == "" && !cfg.DryRun {
        return errors.New("config: output path is required")
    }
    if _, err := ParseFormat(string(cfg.Format)); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    switch cfg.BlogBody {
    case "", content.BodyDocument, content.BodyBlocks:
    default:
        return fmt.Errorf("config: blog body must be %q or %q, got %q", content.BodyDocument, content.BodyBlocks, cfg.BlogBody)
    }
    if cfg.MaxDepth < 0 || cfg.MaxNodes < 0 || cfg.CacheMaxCount < 0 || cfg.CacheMaxAge < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}

func trim(s string) string {
    return strings.TrimSpace(s)
}
