package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Inkubator-IT/admin/internal/cache"
	"github.com/Inkubator-IT/admin/internal/content"
	"github.com/Inkubator-IT/admin/internal/extract"
	"github.com/Inkubator-IT/admin/internal/sanitize"
)

type App struct {
	cfg     Config
	policy  *sanitize.Policy
	cache   *cache.ResultCache
	metrics *runMetrics
	runID   string

	stdin  io.Reader
	stdout io.Writer
}

// result is what the cache stores for one payload.
type result struct {
	Output json.RawMessage `json:"output"`
	Stats  sanitize.Stats  `json:"stats"`
}

var importers = map[Format]extract.Extractor{
	FormatHTML:     extract.HTMLExtractor{},
	FormatMarkdown: extract.MarkdownExtractor{},
}

func New(ctx context.Context, cfg Config) (*App, error) {
	f, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = f

	policy := sanitize.DefaultPolicy()
	policy.MaxDepth = cfg.MaxDepth
	policy.MaxNodes = cfg.MaxNodes

	a := &App{
		cfg:     cfg,
		policy:  policy,
		metrics: newRunMetrics(),
		runID:   uuid.NewString(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}
	if cfg.CacheDir != "" {
		// Apply cache invalidation controls; failures only cost cache hits
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
			}
		}
		a.cache = &cache.ResultCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	log.Debug().Str("run_id", a.runID).Str("format", string(cfg.Format)).Int("max_depth", cfg.MaxDepth).Int("max_nodes", cfg.MaxNodes).Msg("app initialized")
	return a, nil
}

// Close trims the result cache to its configured size.
func (a *App) Close() {
	if a.cache == nil || a.cfg.CacheMaxCount <= 0 {
		return
	}
	if n, err := cache.EnforceLimits(a.cfg.CacheDir, 0, a.cfg.CacheMaxCount); err != nil {
		log.Warn().Err(err).Msg("cache limit enforcement failed")
	} else if n > 0 {
		log.Debug().Int("evicted", n).Msg("cache trimmed")
	}
}

// Run sanitizes every input payload. Payloads that fail form validation or
// are malformed do not stop the run; the returned error then matches
// ErrValidation or ErrMalformed.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	inputs, dirMode, err := listInputs(a.cfg.InputPath)
	if err != nil {
		return err
	}
	log.Info().Str("stage", "load").Int("inputs", len(inputs)).Bool("dir", dirMode).Dur("elapsed", time.Since(start)).Msg("inputs listed")
	if len(inputs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoInputs, a.cfg.InputPath)
	}
	if dirMode && !a.cfg.DryRun {
		if a.cfg.OutputPath == stdio {
			return errors.New("directory input requires an output directory")
		}
		if err := os.MkdirAll(a.cfg.OutputPath, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var (
		entries   []manifestEntry
		invalid   error
		malformed error
		failed    int
	)
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := a.processFile(ctx, in, dirMode)
		entries = append(entries, entry)
		if err == nil {
			continue
		}
		if !rejected(err) {
			return fmt.Errorf("%s: %w", in.Name, err)
		}
		failed++
		switch {
		case errors.Is(err, ErrValidation):
			if invalid == nil {
				invalid = fmt.Errorf("%s: %w", in.Name, err)
			}
		case malformed == nil:
			malformed = fmt.Errorf("%s: %w", in.Name, err)
		}
	}

	if a.cfg.Manifest && !a.cfg.DryRun && a.cfg.OutputPath != stdio {
		mstart := time.Now()
		meta := manifestMeta{
			RunID:        a.runID,
			Version:      BuildVersion,
			Commit:       BuildCommit,
			BuildDate:    BuildDate,
			MaxDepth:     a.cfg.MaxDepth,
			MaxNodes:     a.cfg.MaxNodes,
			Cache:        a.cache != nil,
			PayloadCount: len(entries),
			Failed:       failed,
			GeneratedAt:  time.Now().UTC(),
		}
		b, err := marshalManifestJSON(meta, entries)
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		path := deriveManifestSidecarPath(a.cfg.OutputPath)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		log.Info().Str("stage", "manifest").Str("out", path).Dur("elapsed", time.Since(mstart)).Msg("wrote manifest")
	}

	if a.cfg.MetricsFile != "" {
		if err := a.metrics.writeTextfile(a.cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.MetricsFile).Msg("metrics write failed")
		}
	}

	log.Info().Str("run_id", a.runID).Int("payloads", len(entries)).Int("failed", failed).Dur("elapsed", time.Since(start)).Msg("run complete")
	if failed > 0 {
		return fmt.Errorf("%d of %d payloads rejected: %w", failed, len(entries), errors.Join(invalid, malformed))
	}
	return nil
}

func (a *App) processFile(ctx context.Context, in inputFile, dirMode bool) (manifestEntry, error) {
	start := time.Now()
	raw, err := a.readInput(in)
	if err != nil {
		return manifestEntry{Input: in.Path, Error: err.Error()}, err
	}
	entry := manifestEntry{Input: in.Path, SHA256: computeSHA256Hex(raw), Bytes: len(raw)}

	format := a.cfg.Format
	if format == FormatAuto {
		format, err = DetectFormat(in.Name, raw)
		if err != nil {
			format, err = FormatAuto, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	entry.Format = format

	var res result
	if err == nil {
		var cached bool
		res, cached, err = a.sanitizePayload(ctx, format, raw)
		entry.Cached = cached
		entry.Stats = res.Stats
		if err == nil {
			a.metrics.observe(format, res.Stats)
			log.Info().Str("stage", "sanitize").Str("input", in.Name).Str("format", string(format)).
				Bool("cached", cached).Int("kept", res.Stats.NodesKept).Int("removed", res.Stats.Removed()).
				Dur("elapsed", time.Since(start)).Msg("payload sanitized")
		}
	}
	var reject error
	if err != nil {
		entry.Error = err.Error()
		if !rejected(err) {
			return entry, err
		}
		reject = err
		a.metrics.failures.WithLabelValues(string(format)).Inc()
		log.Warn().Str("stage", "sanitize").Str("input", in.Name).Err(err).Msg("payload rejected")
	}

	body := []byte(res.Output)
	if a.cfg.Envelope {
		switch {
		case reject == nil:
			body, err = json.Marshal(content.OK(res.Output, "sanitized"))
		case errors.Is(reject, ErrValidation):
			body, err = json.Marshal(content.Fail[json.RawMessage](reject, "validation failed"))
		default:
			body, err = json.Marshal(content.Fail[json.RawMessage](reject, "malformed payload"))
		}
		if err != nil {
			return entry, fmt.Errorf("encode envelope: %w", err)
		}
	} else if reject != nil {
		return entry, reject
	}

	if a.cfg.DryRun {
		log.Debug().Str("input", in.Name).Msg("dry run: output not written")
		return entry, reject
	}
	out := deriveOutputPath(a.cfg.OutputPath, in, dirMode)
	if err := a.writeOutput(out, body); err != nil {
		return entry, err
	}
	entry.Output = out
	log.Info().Str("stage", "write").Str("out", out).Int("bytes", len(body)).Msg("wrote output")
	return entry, reject
}

// sanitizePayload consults the result cache before sanitizing. Results that
// fail validation are never cached.
func (a *App) sanitizePayload(ctx context.Context, format Format, raw []byte) (result, bool, error) {
	var key string
	if a.cache != nil {
		kind := string(format)
		if format == FormatBlog && a.cfg.BlogBody != "" {
			kind += "/" + string(a.cfg.BlogBody)
		}
		key = cache.KeyFrom(kind, a.cfg.MaxDepth, a.cfg.MaxNodes, raw)
		b, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		} else if ok {
			var r result
			if err := json.Unmarshal(b, &r); err == nil {
				a.metrics.cacheHits.Inc()
				return r, true, nil
			}
		}
		a.metrics.cacheMisses.Inc()
	}
	r, err := a.sanitize(format, raw)
	if err != nil || a.cache == nil {
		return r, false, err
	}
	if b, err := json.Marshal(r); err == nil {
		if err := a.cache.Save(ctx, key, b); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return r, false, nil
}

func (a *App) sanitize(format Format, raw []byte) (result, error) {
	switch format {
	case FormatDocument:
		doc, st := a.policy.DocumentStats(raw)
		return encodeResult(doc, st)
	case FormatBlocks:
		blocks, st := a.policy.Blocks(raw)
		return encodeResult(blocks, st)
	case FormatHTML, FormatMarkdown:
		imported, err := json.Marshal(importers[format].Extract(raw))
		if err != nil {
			return result{}, fmt.Errorf("encode imported document: %w", err)
		}
		doc, st := a.policy.DocumentStats(imported)
		return encodeResult(doc, st)
	}
	if !format.resource() {
		return result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	p, err := content.Decode(content.Kind(format), raw)
	if err != nil {
		return result{}, err
	}
	clean, st := p.Sanitized(a.policy)
	if blog, ok := clean.(content.BlogRequest); ok && a.cfg.BlogBody != "" {
		clean = blog.WithBody(a.cfg.BlogBody)
	}
	r, err := encodeResult(clean, st)
	if err != nil {
		return r, err
	}
	if err := clean.Validate(); err != nil {
		return r, fmt.Errorf("%s: %w", format, err)
	}
	return r, nil
}

func encodeResult(v any, st sanitize.Stats) (result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return result{}, fmt.Errorf("encode output: %w", err)
	}
	return result{Output: b, Stats: st}, nil
}

func (a *App) readInput(in inputFile) ([]byte, error) {
	if in.Path == stdio {
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}

func (a *App) writeOutput(path string, data []byte) error {
	data = append(data, '\n')
	if path == stdio {
		if _, err := a.stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
