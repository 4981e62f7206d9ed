package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Inkubator-IT/admin/internal/app"
	"github.com/Inkubator-IT/admin/internal/content"
	"github.com/Inkubator-IT/admin/internal/sanitize"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath  string
		envFiles    string
		inputPath   string
		outputPath  string
		format      string
		maxDepth    int
		maxNodes    int
		cacheDir    string
		cacheMaxAge time.Duration
		cacheMax    int
		cacheClear  bool
		cacheStrict bool
		noManifest  bool
		envelope    bool
		blogBody    string
		metricsFile string
		dryRun      bool
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Optional YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load; later files win")
	flag.StringVar(&inputPath, "input", "-", "Payload file or directory of *.json, *.html, *.md files; - reads stdin")
	flag.StringVar(&outputPath, "output", "-", "Output file or directory; - writes stdout")
	flag.StringVar(&format, "format", string(app.FormatAuto), "Payload format: "+formatList())
	flag.IntVar(&maxDepth, "limits.maxDepth", sanitize.DefaultMaxDepth, "Maximum document nesting depth (0 disables)")
	flag.IntVar(&maxNodes, "limits.maxNodes", sanitize.DefaultMaxNodes, "Maximum nodes or blocks kept per payload (0 disables)")
	flag.StringVar(&cacheDir, "cache.dir", ".admin-sanitize-cache", "Result cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.IntVar(&cacheMax, "cache.maxCount", 0, "Maximum cached results kept after a run; 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&noManifest, "no-manifest", false, "Do not write the <output>.manifest.json sidecar")
	flag.BoolVar(&envelope, "envelope", false, "Wrap outputs in the backend response envelope")
	flag.StringVar(&blogBody, "blog.body", "", "Normalize blog bodies to doc or blocks; empty keeps the incoming shape")
	flag.StringVar(&metricsFile, "metrics.file", "", "Write Prometheus textfile metrics to this path")
	flag.BoolVar(&dryRun, "dry-run", false, "Sanitize and validate without writing outputs")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("admin-sanitize %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}

	cfg := app.Config{
		InputPath:        inputPath,
		OutputPath:       outputPath,
		Format:           app.Format(format),
		MaxDepth:         maxDepth,
		MaxNodes:         maxNodes,
		CacheDir:         cacheDir,
		CacheMaxAge:      cacheMaxAge,
		CacheMaxCount:    cacheMax,
		CacheClear:       cacheClear,
		CacheStrictPerms: cacheStrict,
		Manifest:         !noManifest,
		Envelope:         envelope,
		BlogBody:         content.BodyFormat(blogBody),
		MetricsFile:      metricsFile,
		DryRun:           dryRun,
		Verbose:          verbose,
	}

	// Precedence: flags > env > config file > flag defaults
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var fc *app.FileConfig
	if strings.TrimSpace(configPath) != "" {
		loaded, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config load failed")
			os.Exit(1)
		}
		fc = &loaded
	}
	cfg = layerConfig(cfg, fc, set)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// layerConfig applies the config file and env overrides on top of the parsed
// flags, then restores every flag given explicitly on the command line.
func layerConfig(flagged app.Config, fc *app.FileConfig, set map[string]bool) app.Config {
	cfg := flagged
	if fc != nil {
		app.ApplyFileConfig(&cfg, *fc)
	}
	app.ApplyEnvOverrides(&cfg)
	restoreFlags(&cfg, flagged, set)
	return cfg
}

// restoreFlags puts back values given explicitly on the command line after
// the config file and env overrides ran.
func restoreFlags(cfg *app.Config, flagged app.Config, set map[string]bool) {
	if set["input"] { cfg.InputPath = flagged.InputPath }
	if set["output"] { cfg.OutputPath = flagged.OutputPath }
	if set["format"] { cfg.Format = flagged.Format }
	if set["limits.maxDepth"] { cfg.MaxDepth = flagged.MaxDepth }
	if set["limits.maxNodes"] { cfg.MaxNodes = flagged.MaxNodes }
	if set["cache.dir"] { cfg.CacheDir = flagged.CacheDir }
	if set["cache.maxAge"] { cfg.CacheMaxAge = flagged.CacheMaxAge }
	if set["cache.maxCount"] { cfg.CacheMaxCount = flagged.CacheMaxCount }
	if set["cache.clear"] { cfg.CacheClear = flagged.CacheClear }
	if set["cache.strictPerms"] { cfg.CacheStrictPerms = flagged.CacheStrictPerms }
	if set["no-manifest"] { cfg.Manifest = flagged.Manifest }
	if set["envelope"] { cfg.Envelope = flagged.Envelope }
	if set["blog.body"] { cfg.BlogBody = flagged.BlogBody }
	if set["metrics.file"] { cfg.MetricsFile = flagged.MetricsFile }
	if set["dry-run"] { cfg.DryRun = flagged.DryRun }
	if set["v"] { cfg.Verbose = flagged.Verbose }
}

// exitCode maps run errors to the process exit status: 2 when nothing was
// processed or a payload was rejected, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, app.ErrNoInputs) || errors.Is(err, app.ErrValidation) || errors.Is(err, app.ErrMalformed) {
		return 2
	}
	return 1
}

func formatList() string {
	names := make([]string, 0, len(app.Formats))
	for _, f := range app.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
