package sanitize

import (
	"regexp"
	"strings"
)

// headerLevel is the heading level a flat header block maps to.
const headerLevel = 2

var blankRuns = regexp.MustCompile(`\n{3,}`)

// BlocksToDocument converts flat blocks into a document tree. Headers become
// level-2 headings and quotes become blockquotes wrapping one paragraph.
// Blocks are expected to be sanitized already.
func BlocksToDocument(blocks []ContentBlock) Document {
	doc := EmptyDocument()
	for _, b := range blocks {
		var inline []Node
		if b.Text != "" {
			inline = []Node{{Type: KindText, Text: b.Text}}
		}
		switch b.Type {
		case BlockHeader:
			doc.Content = append(doc.Content, Node{
				Type:    KindHeading,
				Attrs:   &NodeAttrs{Level: headerLevel},
				Content: inline,
			})
		case BlockQuote:
			doc.Content = append(doc.Content, Node{
				Type:    KindBlockquote,
				Content: []Node{{Type: KindParagraph, Content: inline}},
			})
		case BlockParagraph:
			doc.Content = append(doc.Content, Node{Type: KindParagraph, Content: inline})
		}
	}
	return doc
}

// DocumentToBlocks flattens a document into blocks. Headings become headers,
// blockquotes become quotes, each list item becomes its own paragraph and
// every other node with text becomes a paragraph. Nodes without text are
// skipped.
func DocumentToBlocks(doc Document) []ContentBlock {
	out := []ContentBlock{}
	add := func(t BlockType, text string) {
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, ContentBlock{Type: t, Text: text})
		}
	}
	for _, n := range doc.Content {
		switch n.Type {
		case KindHeading:
			add(BlockHeader, inlineText(n))
		case KindBlockquote:
			add(BlockQuote, PlainText(Document{Type: KindDoc, Content: n.Content}))
		case KindBulletList, KindOrderedList:
			for _, item := range n.Content {
				add(BlockParagraph, inlineText(item))
			}
		case KindHorizontalRule, KindHardBreak, KindImage:
		default:
			add(BlockParagraph, inlineText(n))
		}
	}
	return out
}

// PlainText renders the text of a document with blank lines between blocks.
// List items are prefixed with "- " and adjacent text runs are joined with a
// space.
func PlainText(doc Document) string {
	var b strings.Builder
	for _, n := range doc.Content {
		writePlain(&b, n)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
}

// WordCount counts whitespace separated words in the plain text of doc.
func WordCount(doc Document) int {
	return len(strings.Fields(PlainText(doc)))
}

func writePlain(b *strings.Builder, n Node) {
	switch n.Type {
	case KindText:
		b.WriteString(n.Text)
	case KindHardBreak:
		b.WriteString("\n")
	case KindHorizontalRule:
		b.WriteString("\n\n")
	case KindImage:
	case KindParagraph, KindHeading, KindCodeBlock, KindBlockquote:
		writeChildren(b, n)
		b.WriteString("\n\n")
	case KindListItem:
		b.WriteString("- ")
		writeChildren(b, n)
		b.WriteString("\n")
	case KindBulletList, KindOrderedList:
		writeChildren(b, n)
		b.WriteString("\n")
	default:
		writeChildren(b, n)
	}
}

// writeChildren separates adjacent text runs with a space. Runs are trimmed
// when sanitized, so the space that split them at a mark boundary is gone.
func writeChildren(b *strings.Builder, n Node) {
	for i, c := range n.Content {
		if i > 0 && c.Type == KindText && n.Content[i-1].Type == KindText {
			b.WriteString(" ")
		}
		writePlain(b, c)
	}
}

// inlineText joins the text beneath n on a single line.
func inlineText(n Node) string {
	var b strings.Builder
	var walk func(Node)
	walk = func(cur Node) {
		switch cur.Type {
		case KindText:
			b.WriteString(cur.Text)
			return
		case KindHardBreak:
			b.WriteString(" ")
			return
		}
		for i, c := range cur.Content {
			if i > 0 && (isBlock(c.Type) || c.Type == KindText && cur.Content[i-1].Type == KindText) {
				b.WriteString(" ")
			}
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func isBlock(kind string) bool {
	switch kind {
	case KindParagraph, KindHeading, KindBulletList, KindOrderedList,
		KindListItem, KindBlockquote, KindCodeBlock:
		return true
	}
	return false
}
