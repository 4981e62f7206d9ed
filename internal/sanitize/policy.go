package sanitize

import "strings"

// Default structural limits for untrusted trees.
const (
	DefaultMaxDepth = 64
	DefaultMaxNodes = 10000
)

// Policy defines what a sanitized document may contain.
type Policy struct {
	// NodeKinds is the allow-list checked for every tree node.
	NodeKinds []string

	// MarkKinds is the allow-list checked for every mark on a text node.
	MarkKinds []string

	// LinkPrefixes lists the accepted prefixes of a link mark's href.
	// A link whose href matches none of them is removed together with
	// the mark.
	LinkPrefixes []string

	// ImageSrcPrefixes lists the accepted prefixes of an image src.
	ImageSrcPrefixes []string

	// TextAligns lists the accepted textAlign values on paragraphs and
	// headings.
	TextAligns []string

	// TextLimit caps every text payload, alt text and href.
	TextLimit int

	// MaxDepth limits nesting. Top-level nodes are at depth 1; deeper
	// nodes are dropped. Zero means unlimited.
	MaxDepth int

	// MaxNodes limits how many nodes (or blocks) are kept, counted in
	// document order. Zero means unlimited.
	MaxNodes int
}

// DefaultPolicy returns the policy used for blog bodies. The node
// allow-list includes the mark kinds because the editor occasionally
// serializes inline formatting as nodes.
func DefaultPolicy() *Policy {
	return &Policy{
		NodeKinds: []string{
			KindParagraph, KindHeading,
			KindBulletList, KindOrderedList, KindListItem,
			KindBlockquote, KindCodeBlock,
			KindHardBreak, KindHorizontalRule,
			KindImage, KindText, KindTextStyle,
			MarkBold, MarkItalic, MarkUnderline, MarkStrike, MarkCode, MarkLink,
		},
		MarkKinds:        []string{MarkBold, MarkItalic, MarkUnderline, MarkStrike, MarkLink, MarkCode},
		LinkPrefixes:     []string{"http://", "https://", "/"},
		ImageSrcPrefixes: []string{"data:image/"},
		TextAligns:       []string{"left", "center", "right", "justify"},
		TextLimit:        GeneralLimit,
		MaxDepth:         DefaultMaxDepth,
		MaxNodes:         DefaultMaxNodes,
	}
}

func (p *Policy) text(s string) string {
	return Truncate(s, p.TextLimit)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, pre := range prefixes {
		if strings.HasPrefix(s, pre) {
			return true
		}
	}
	return false
}

func sliceToSet(s []string) map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}
