package app

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/Inkubator-IT/admin/internal/content"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("SANITIZE_INPUT"); v != "" { cfg.InputPath = v }
    if v := os.Getenv("SANITIZE_OUTPUT"); v != "" { cfg.OutputPath = v }
    if v := strings.TrimSpace(os.Getenv("SANITIZE_FORMAT")); v != "" { cfg.Format = Format(strings.ToLower(v)) }
    if v := os.Getenv("CACHE_DIR"); v != "" { cfg.CacheDir = v }
    if v := os.Getenv("METRICS_FILE"); v != "" { cfg.MetricsFile = v }
    if v := strings.TrimSpace(os.Getenv("SANITIZE_BLOG_BODY")); v != "" { cfg.BlogBody = content.BodyFormat(strings.ToLower(v)) }

    setInt := func(dst *int, envKey string) {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envKey))); err == nil && n >= 0 {
            *dst = n
        }
    }
    setInt(&cfg.MaxDepth, "SANITIZE_MAX_DEPTH")
    setInt(&cfg.MaxNodes, "SANITIZE_MAX_NODES")

    if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.CacheMaxAge = d
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
