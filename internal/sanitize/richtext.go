package sanitize

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
)

// Stats counts what a sanitize pass kept and removed.
type Stats struct {
	NodesKept    int `json:"nodes_kept"`
	NodesDropped int `json:"nodes_dropped"`
	MarksDropped int `json:"marks_dropped"`
	AttrsDropped int `json:"attrs_dropped"`
	// Limited counts nodes removed because of MaxDepth or MaxNodes.
	Limited int `json:"limited"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.NodesKept += o.NodesKept
	s.NodesDropped += o.NodesDropped
	s.MarksDropped += o.MarksDropped
	s.AttrsDropped += o.AttrsDropped
	s.Limited += o.Limited
}

// Removed is the total number of nodes, marks and attributes removed.
func (s Stats) Removed() int {
	return s.NodesDropped + s.MarksDropped + s.AttrsDropped + s.Limited
}

// RichText sanitizes a raw TipTap JSON document with DefaultPolicy.
func RichText(raw []byte) Document {
	return DefaultPolicy().Document(raw)
}

// RichTextValue sanitizes an already decoded document value with
// DefaultPolicy. The value is re-encoded so that its shape is not trusted.
func RichTextValue(v any) Document {
	return DefaultPolicy().DocumentValue(v)
}

// Document sanitizes raw JSON claiming to be a document.
func (p *Policy) Document(raw []byte) Document {
	doc, _ := p.DocumentStats(raw)
	return doc
}

// DocumentValue sanitizes a decoded value claiming to be a document.
func (p *Policy) DocumentValue(v any) Document {
	if v == nil {
		return EmptyDocument()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return EmptyDocument()
	}
	return p.Document(raw)
}

// DocumentStats is Document with statistics about removed content. The
// returned document always has type "doc" and a non-nil content slice.
func (p *Policy) DocumentStats(raw []byte) (Document, Stats) {
	w := newWalker(p)
	doc := EmptyDocument()
	if !gjson.ValidBytes(raw) {
		return doc, w.stats
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return doc, w.stats
	}
	content := root.Get("content")
	if !content.IsArray() {
		return doc, w.stats
	}
	if kids := w.children(content, 1); len(kids) > 0 {
		doc.Content = kids
	}
	return doc, w.stats
}

type walker struct {
	p      *Policy
	nodes  map[string]bool
	marks  map[string]bool
	aligns map[string]bool
	// left is the remaining node budget; negative means unlimited.
	left  int
	stats Stats
}

func newWalker(p *Policy) *walker {
	if p == nil {
		p = DefaultPolicy()
	}
	left := -1
	if p.MaxNodes > 0 {
		left = p.MaxNodes
	}
	return &walker{
		p:      p,
		nodes:  sliceToSet(p.NodeKinds),
		marks:  sliceToSet(p.MarkKinds),
		aligns: sliceToSet(p.TextAligns),
		left:   left,
	}
}

func (w *walker) children(list gjson.Result, depth int) []Node {
	var out []Node
	list.ForEach(func(_, child gjson.Result) bool {
		if n, ok := w.node(child, depth); ok {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (w *walker) node(r gjson.Result, depth int) (Node, bool) {
	if !r.IsObject() {
		w.stats.NodesDropped++
		return Node{}, false
	}
	kind := r.Get("type")
	if kind.Type != gjson.String || !w.nodes[kind.Str] {
		w.stats.NodesDropped++
		return Node{}, false
	}
	if (w.p.MaxDepth > 0 && depth > w.p.MaxDepth) || w.left == 0 {
		w.stats.Limited++
		return Node{}, false
	}
	if w.left > 0 {
		w.left--
	}

	n := Node{Type: kind.Str}
	if t := r.Get("text"); t.Exists() {
		n.Text = w.p.text(stringValue(t))
	}
	if m := r.Get("marks"); m.IsArray() {
		n.Marks = w.markList(m)
	}
	if a := r.Get("attrs"); a.IsObject() {
		n.Attrs = w.attrs(n.Type, a)
	}
	if c := r.Get("content"); c.IsArray() {
		if kids := w.children(c, depth+1); len(kids) > 0 {
			n.Content = kids
		}
	}

	if n.Type == "" || !w.nodes[n.Type] {
		w.stats.NodesDropped++
		return Node{}, false
	}
	w.stats.NodesKept++
	return n, true
}

func (w *walker) markList(list gjson.Result) []Mark {
	var out []Mark
	list.ForEach(func(_, m gjson.Result) bool {
		kind := m.Get("type")
		if !m.IsObject() || kind.Type != gjson.String || !w.marks[kind.Str] {
			w.stats.MarksDropped++
			return true
		}
		mark := Mark{Type: kind.Str}
		if mark.Type == MarkLink {
			href := stringValue(m.Get("attrs.href"))
			if !hasAnyPrefix(href, w.p.LinkPrefixes) {
				w.stats.MarksDropped++
				return true
			}
			mark.Attrs = &MarkAttrs{Href: w.p.text(href)}
		}
		out = append(out, mark)
		return true
	})
	return out
}

func (w *walker) attrs(kind string, r gjson.Result) *NodeAttrs {
	var a NodeAttrs
	switch kind {
	case KindImage:
		if src := stringValue(r.Get("src")); hasAnyPrefix(src, w.p.ImageSrcPrefixes) {
			a.Src = src
		}
		if alt := stringValue(r.Get("alt")); alt != "" {
			a.Alt = w.p.text(alt)
		}
	case KindHeading:
		lvl := r.Get("level")
		if lvl.Type == gjson.Number && lvl.Num == math.Trunc(lvl.Num) && lvl.Num >= 1 && lvl.Num <= 6 {
			a.Level = int(lvl.Num)
		}
		a.TextAlign = w.align(r)
	case KindParagraph:
		a.TextAlign = w.align(r)
	}

	kept := a.count()
	total := 0
	r.ForEach(func(_, _ gjson.Result) bool {
		total++
		return true
	})
	if total > kept {
		w.stats.AttrsDropped += total - kept
	}
	if kept == 0 {
		return nil
	}
	return &a
}

func (w *walker) align(r gjson.Result) string {
	v := stringValue(r.Get("textAlign"))
	if w.aligns[v] {
		return v
	}
	return ""
}

func (a NodeAttrs) count() int {
	n := 0
	if a.Level != 0 {
		n++
	}
	if a.Src != "" {
		n++
	}
	if a.Alt != "" {
		n++
	}
	if a.TextAlign != "" {
		n++
	}
	return n
}

func stringValue(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
