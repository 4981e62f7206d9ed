package app

import (
	"time"

	"github.com/Inkubator-IT/admin/internal/content"
)

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string
	// Format is one of Formats; FormatAuto sniffs each payload.
	Format Format

	// Structural limits for rich documents; zero means unlimited
	MaxDepth int
	MaxNodes int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxCount    int
	CacheClear       bool
	CacheStrictPerms bool

	// Outputs
	Manifest    bool
	Envelope    bool
	MetricsFile string
	// BlogBody, when set, rewrites every blog body to that shape
	BlogBody content.BodyFormat

	// Behavior
	DryRun  bool
	Verbose bool
}
