package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Inkubator-IT/admin/internal/sanitize"
)

// manifestEntry is a compact record of one sanitized payload.
type manifestEntry struct {
	Input  string         `json:"input"`
	Output string         `json:"output,omitempty"`
	SHA256 string         `json:"sha256"`
	Bytes  int            `json:"bytes"`
	Format Format         `json:"format"`
	Cached bool           `json:"cached,omitempty"`
	Stats  sanitize.Stats `json:"stats"`
	Error  string         `json:"error,omitempty"`
}

// manifestMeta captures high-level run details that aid reproducibility.
type manifestMeta struct {
	RunID        string    `json:"run_id"`
	Version      string    `json:"version"`
	Commit       string    `json:"commit"`
	BuildDate    string    `json:"build_date"`
	MaxDepth     int       `json:"max_depth"`
	MaxNodes     int       `json:"max_nodes"`
	Cache        bool      `json:"cache"`
	PayloadCount int       `json:"payload_count"`
	Failed       int       `json:"failed"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// marshalManifestJSON encodes a machine-readable sidecar manifest.
func marshalManifestJSON(meta manifestMeta, entries []manifestEntry) ([]byte, error) {
	if entries == nil {
		entries = []manifestEntry{}
	}
	payload := struct {
		Meta     manifestMeta    `json:"meta"`
		Payloads []manifestEntry `json:"payloads"`
	}{Meta: meta, Payloads: entries}
	return json.MarshalIndent(payload, "", "  ")
}
