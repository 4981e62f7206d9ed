package sanitize

// Node kinds accepted in document trees. Wire values match the TipTap JSON
// the editor emits.
const (
	KindDoc            = "doc"
	KindParagraph      = "paragraph"
	KindHeading        = "heading"
	KindBulletList     = "bulletList"
	KindOrderedList    = "orderedList"
	KindListItem       = "listItem"
	KindBlockquote     = "blockquote"
	KindCodeBlock      = "codeBlock"
	KindHardBreak      = "hardBreak"
	KindHorizontalRule = "horizontalRule"
	KindImage          = "image"
	KindText           = "text"
	KindTextStyle      = "textStyle"
)

// Mark kinds. They are also accepted as node kinds, see DefaultPolicy.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkLink      = "link"
)

// Document is the root of a rich-text tree. Type is always "doc".
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Node is one element of a document tree.
type Node struct {
	Type    string     `json:"type"`
	Text    string     `json:"text,omitempty"`
	Marks   []Mark     `json:"marks,omitempty"`
	Attrs   *NodeAttrs `json:"attrs,omitempty"`
	Content []Node     `json:"content,omitempty"`
}

// NodeAttrs holds the attributes that survive sanitization. Which fields may
// be set depends on the node kind.
type NodeAttrs struct {
	Level     int    `json:"level,omitempty"`
	Src       string `json:"src,omitempty"`
	Alt       string `json:"alt,omitempty"`
	TextAlign string `json:"textAlign,omitempty"`
}

// Mark is an inline formatting annotation on a text node.
type Mark struct {
	Type  string     `json:"type"`
	Attrs *MarkAttrs `json:"attrs,omitempty"`
}

// MarkAttrs carries the link target of a link mark.
type MarkAttrs struct {
	Href string `json:"href"`
}

// EmptyDocument returns a document with no content.
func EmptyDocument() Document {
	return Document{Type: KindDoc, Content: []Node{}}
}

// HasMark reports whether n carries a mark of the given kind.
func (n Node) HasMark(kind string) bool {
	for _, m := range n.Marks {
		if m.Type == kind {
			return true
		}
	}
	return false
}
