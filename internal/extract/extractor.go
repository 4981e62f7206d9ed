package extract

import "github.com/Inkubator-IT/admin/internal/sanitize"

// Extractor converts a foreign body format into a document tree.
// Implementations must be deterministic and free of side effects.
type Extractor interface {
	Extract(input []byte) sanitize.Document
}

// HTMLExtractor imports HTML with FromHTML.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(input []byte) sanitize.Document {
	return FromHTML(input)
}

// MarkdownExtractor imports Markdown with FromMarkdown.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(input []byte) sanitize.Document {
	return FromMarkdown(input)
}
