package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/Inkubator-IT/admin/internal/sanitize"
)

// ugc is the pre-pass applied to imported HTML. It is safe for concurrent use.
var ugc = newUGCPolicy()

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	return p
}

// FromHTML converts an HTML body (for example a legacy blog post or content
// pasted from another site) into a document tree. Content is taken from
// <main> or <article> when present, falling back to <body>; navigation,
// footers and scripts are skipped. Elements with no document equivalent are
// unwrapped. The result still has to go through the sanitizer before it is
// stored.
func FromHTML(input []byte) sanitize.Document {
	doc := sanitize.EmptyDocument()
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return doc
	}
	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return doc
	}
	removeBoilerplate(content)

	var buf bytes.Buffer
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return doc
		}
	}
	cleaned, err := html.Parse(bytes.NewReader(ugc.SanitizeBytes(buf.Bytes())))
	if err != nil {
		return doc
	}
	body := findFirst(cleaned, "body")
	if body == nil {
		return doc
	}
	if blocks := convertBlocks(body); len(blocks) > 0 {
		doc.Content = blocks
	}
	return doc
}

// removeBoilerplate detaches elements that never carry article content.
func removeBoilerplate(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch strings.ToLower(c.Data) {
			case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "form":
				n.RemoveChild(c)
				c = next
				continue
			}
		}
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeBoilerplate(c)
		}
		c = next
	}
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// convertBlocks converts the children of parent into block nodes. Runs of
// inline content between blocks are wrapped in paragraphs.
func convertBlocks(parent *html.Node) []sanitize.Node {
	var out, inline []sanitize.Node
	flush := func() {
		if hasContent(inline) {
			out = append(out, sanitize.Node{Type: sanitize.KindParagraph, Content: inline})
		}
		inline = nil
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			flush()
			out = append(out, convertBlock(c)...)
			continue
		}
		inline = append(inline, convertInline(c, nil)...)
	}
	flush()
	return out
}

func convertBlock(n *html.Node) []sanitize.Node {
	name := strings.ToLower(n.Data)
	switch name {
	case "p":
		return []sanitize.Node{{Type: sanitize.KindParagraph, Content: inlineChildren(n, nil)}}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(name[1:])
		return []sanitize.Node{{
			Type:    sanitize.KindHeading,
			Attrs:   &sanitize.NodeAttrs{Level: level},
			Content: inlineChildren(n, nil),
		}}
	case "ul", "ol":
		list := sanitize.Node{Type: sanitize.KindBulletList}
		if name == "ol" {
			list.Type = sanitize.KindOrderedList
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, "li") {
				list.Content = append(list.Content, listItem(c))
			}
		}
		return []sanitize.Node{list}
	case "li":
		return []sanitize.Node{listItem(n)}
	case "blockquote":
		return []sanitize.Node{{Type: sanitize.KindBlockquote, Content: convertBlocks(n)}}
	case "pre":
		code := sanitize.Node{Type: sanitize.KindCodeBlock}
		if text := textContent(n); strings.TrimSpace(text) != "" {
			code.Content = []sanitize.Node{{Type: sanitize.KindText, Text: norm.NFC.String(text)}}
		}
		return []sanitize.Node{code}
	case "hr":
		return []sanitize.Node{{Type: sanitize.KindHorizontalRule}}
	case "img":
		img := sanitize.Node{Type: sanitize.KindImage}
		src, alt := attr(n, "src"), attr(n, "alt")
		if src != "" || alt != "" {
			img.Attrs = &sanitize.NodeAttrs{Src: src, Alt: norm.NFC.String(alt)}
		}
		return []sanitize.Node{img}
	}
	return convertBlocks(n)
}

func listItem(li *html.Node) sanitize.Node {
	return sanitize.Node{Type: sanitize.KindListItem, Content: convertBlocks(li)}
}

func inlineChildren(n *html.Node, marks []sanitize.Mark) []sanitize.Node {
	var out []sanitize.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertInline(c, marks)...)
	}
	return out
}

func convertInline(n *html.Node, marks []sanitize.Mark) []sanitize.Node {
	switch n.Type {
	case html.TextNode:
		text := collapseSpaces(n.Data)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []sanitize.Node{{Type: sanitize.KindText, Text: norm.NFC.String(text), Marks: marks}}
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "br":
			return []sanitize.Node{{Type: sanitize.KindHardBreak}}
		case "img":
			return convertBlock(n)
		case "b", "strong":
			marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkBold})
		case "i", "em":
			marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkItalic})
		case "u", "ins":
			marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkUnderline})
		case "s", "strike", "del":
			marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkStrike})
		case "code", "kbd", "samp":
			marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkCode})
		case "a":
			if href := attr(n, "href"); href != "" {
				marks = withMark(marks, sanitize.Mark{Type: sanitize.MarkLink, Attrs: &sanitize.MarkAttrs{Href: href}})
			}
		}
		return inlineChildren(n, marks)
	}
	return nil
}

// withMark returns a copy of marks with m appended so sibling subtrees do
// not share a backing array.
func withMark(marks []sanitize.Mark, m sanitize.Mark) []sanitize.Mark {
	out := make([]sanitize.Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch strings.ToLower(n.Data) {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li",
		"blockquote", "pre", "hr", "img", "div", "section", "article",
		"main", "header", "figure", "figcaption",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th", "details", "summary":
		return true
	}
	return false
}

// hasContent reports whether an inline run holds anything besides line
// breaks.
func hasContent(nodes []sanitize.Node) bool {
	for _, n := range nodes {
		if n.Type != sanitize.KindHardBreak {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
