package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"

	"github.com/Inkubator-IT/admin/internal/sanitize"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// FromMarkdown converts a Markdown body into a document tree. Raw HTML in
// the Markdown source is dropped.
func FromMarkdown(src []byte) sanitize.Document {
	doc := sanitize.EmptyDocument()
	root := md.Parser().Parse(text.NewReader(src))
	if root == nil {
		return doc
	}
	if blocks := mdBlocks(root, src); len(blocks) > 0 {
		doc.Content = blocks
	}
	return doc
}

func mdBlocks(parent ast.Node, src []byte) []sanitize.Node {
	var out []sanitize.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if n, ok := mdBlock(c, src); ok {
			out = append(out, n)
		}
	}
	return out
}

func mdBlock(n ast.Node, src []byte) (sanitize.Node, bool) {
	switch v := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return sanitize.Node{Type: sanitize.KindParagraph, Content: mdInlines(n, src, nil)}, true
	case *ast.Heading:
		return sanitize.Node{
			Type:    sanitize.KindHeading,
			Attrs:   &sanitize.NodeAttrs{Level: v.Level},
			Content: mdInlines(n, src, nil),
		}, true
	case *ast.List:
		kind := sanitize.KindBulletList
		if v.IsOrdered() {
			kind = sanitize.KindOrderedList
		}
		return sanitize.Node{Type: kind, Content: mdBlocks(n, src)}, true
	case *ast.ListItem:
		return sanitize.Node{Type: sanitize.KindListItem, Content: mdBlocks(n, src)}, true
	case *ast.Blockquote:
		return sanitize.Node{Type: sanitize.KindBlockquote, Content: mdBlocks(n, src)}, true
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := sanitize.Node{Type: sanitize.KindCodeBlock}
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if body := strings.TrimRight(buf.String(), "\n"); body != "" {
			code.Content = []sanitize.Node{{Type: sanitize.KindText, Text: norm.NFC.String(body)}}
		}
		return code, true
	case *ast.ThematicBreak:
		return sanitize.Node{Type: sanitize.KindHorizontalRule}, true
	}
	return sanitize.Node{}, false
}

func mdInlines(parent ast.Node, src []byte, marks []sanitize.Mark) []sanitize.Node {
	var out []sanitize.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, mdInline(c, src, marks)...)
	}
	return out
}

func mdInline(n ast.Node, src []byte, marks []sanitize.Mark) []sanitize.Node {
	switch v := n.(type) {
	case *ast.Text:
		var out []sanitize.Node
		if s := string(v.Segment.Value(src)); s != "" {
			out = append(out, sanitize.Node{Type: sanitize.KindText, Text: norm.NFC.String(s), Marks: marks})
		}
		if v.HardLineBreak() {
			out = append(out, sanitize.Node{Type: sanitize.KindHardBreak})
		}
		return out
	case *ast.String:
		if len(v.Value) == 0 {
			return nil
		}
		return []sanitize.Node{{Type: sanitize.KindText, Text: norm.NFC.String(string(v.Value)), Marks: marks}}
	case *ast.Emphasis:
		kind := sanitize.MarkItalic
		if v.Level >= 2 {
			kind = sanitize.MarkBold
		}
		return mdInlines(n, src, withMark(marks, sanitize.Mark{Type: kind}))
	case *east.Strikethrough:
		return mdInlines(n, src, withMark(marks, sanitize.Mark{Type: sanitize.MarkStrike}))
	case *ast.CodeSpan:
		return mdInlines(n, src, withMark(marks, sanitize.Mark{Type: sanitize.MarkCode}))
	case *ast.Link:
		link := sanitize.Mark{Type: sanitize.MarkLink, Attrs: &sanitize.MarkAttrs{Href: string(v.Destination)}}
		return mdInlines(n, src, withMark(marks, link))
	case *ast.AutoLink:
		link := sanitize.Mark{Type: sanitize.MarkLink, Attrs: &sanitize.MarkAttrs{Href: string(v.URL(src))}}
		return []sanitize.Node{{Type: sanitize.KindText, Text: string(v.Label(src)), Marks: withMark(marks, link)}}
	case *ast.Image:
		img := sanitize.Node{Type: sanitize.KindImage, Attrs: &sanitize.NodeAttrs{Src: string(v.Destination)}}
		var alt strings.Builder
		for _, t := range mdInlines(n, src, nil) {
			alt.WriteString(t.Text)
		}
		img.Attrs.Alt = norm.NFC.String(alt.String())
		return []sanitize.Node{img}
	case *ast.RawHTML:
		return nil
	}
	return mdInlines(n, src, marks)
}
