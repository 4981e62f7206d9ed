package sanitize

import "github.com/tidwall/gjson"

// BlockType is the kind of a flat content block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeader    BlockType = "header"
	BlockQuote     BlockType = "quote"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockParagraph, BlockHeader, BlockQuote:
		return true
	}
	return false
}

// ContentBlock is one entry of the flat structured-editor format.
type ContentBlock struct {
	Type BlockType `json:"type"`
	Text string    `json:"text"`
}

// SanitizeBlocks drops blocks of unknown type and sanitizes the text of the
// rest with DefaultPolicy.
func SanitizeBlocks(blocks []ContentBlock) []ContentBlock {
	out, _ := DefaultPolicy().BlockList(blocks)
	return out
}

// BlockList sanitizes typed blocks. Order is preserved and at most MaxNodes
// blocks are kept.
func (p *Policy) BlockList(blocks []ContentBlock) ([]ContentBlock, Stats) {
	w := newWalker(p)
	out := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if cb, ok := w.block(b.Type, b.Text); ok {
			out = append(out, cb)
		}
	}
	return out, w.stats
}

// Blocks sanitizes raw JSON claiming to be a block list. Anything other than
// a JSON array yields an empty list.
func (p *Policy) Blocks(raw []byte) ([]ContentBlock, Stats) {
	w := newWalker(p)
	out := []ContentBlock{}
	if !gjson.ValidBytes(raw) {
		return out, w.stats
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return out, w.stats
	}
	root.ForEach(func(_, r gjson.Result) bool {
		if !r.IsObject() {
			w.stats.NodesDropped++
			return true
		}
		if cb, ok := w.block(BlockType(stringValue(r.Get("type"))), stringValue(r.Get("text"))); ok {
			out = append(out, cb)
		}
		return true
	})
	return out, w.stats
}

func (w *walker) block(t BlockType, text string) (ContentBlock, bool) {
	if !t.Valid() {
		w.stats.NodesDropped++
		return ContentBlock{}, false
	}
	if w.left == 0 {
		w.stats.Limited++
		return ContentBlock{}, false
	}
	if w.left > 0 {
		w.left--
	}
	w.stats.NodesKept++
	return ContentBlock{Type: t, Text: w.p.text(text)}, true
}
