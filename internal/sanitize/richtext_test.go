package sanitize

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func sanitizeString(t *testing.T, in string) string {
	t.Helper()
	return mustJSON(t, RichText([]byte(in)))
}

func TestRichText_EmptyAndMalformedInput(t *testing.T) {
	want := `{"type":"doc","content":[]}`
	for _, in := range []string{"", "null", "[]", "42", `"doc"`, "{", `{"type":"doc"}`, `{"content":"x"}`, `{"content":{"a":1}}`, `[{"type":"paragraph"}]`} {
		if got := sanitizeString(t, in); got != want {
			t.Fatalf("input %q: got %s, want %s", in, got, want)
		}
	}
	if got := mustJSON(t, RichTextValue(nil)); got != want {
		t.Fatalf("nil value: got %s", got)
	}
}

func TestRichText_RootTypeIsAlwaysDoc(t *testing.T) {
	got := sanitizeString(t, `{"type":"evil","content":[{"type":"paragraph"}]}`)
	want := `{"type":"doc","content":[{"type":"paragraph"}]}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_InvalidHeadingLevelAndTagInText(t *testing.T) {
	in := `{"type":"doc","content":[{"type":"heading","attrs":{"level":9},"content":[{"type":"text","text":"<b>Hi</b>"}]}]}`
	want := `{"type":"doc","content":[{"type":"heading","content":[{"type":"text","text":"Hi"}]}]}`
	doc, stats := DefaultPolicy().DocumentStats([]byte(in))
	if got := mustJSON(t, doc); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if stats.AttrsDropped != 1 {
		t.Fatalf("expected 1 dropped attr, got %d", stats.AttrsDropped)
	}
	if stats.NodesKept != 2 {
		t.Fatalf("expected 2 kept nodes, got %d", stats.NodesKept)
	}
}

func TestRichText_HeadingLevelMustBeInteger(t *testing.T) {
	cases := map[string]string{
		`3`:    `{"type":"doc","content":[{"type":"heading","attrs":{"level":3}}]}`,
		`2.0`:  `{"type":"doc","content":[{"type":"heading","attrs":{"level":2}}]}`,
		`2.5`:  `{"type":"doc","content":[{"type":"heading"}]}`,
		`"2"`:  `{"type":"doc","content":[{"type":"heading"}]}`,
		`0`:    `{"type":"doc","content":[{"type":"heading"}]}`,
		`null`: `{"type":"doc","content":[{"type":"heading"}]}`,
	}
	for level, want := range cases {
		in := `{"content":[{"type":"heading","attrs":{"level":` + level + `}}]}`
		if got := sanitizeString(t, in); got != want {
			t.Fatalf("level %s: got %s, want %s", level, got, want)
		}
	}
}

func TestRichText_JavascriptLinkMarkDropped(t *testing.T) {
	in := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"click","marks":[{"type":"bold"},{"type":"link","attrs":{"href":"javascript:alert(1)"}}]}]}]}`
	want := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"click","marks":[{"type":"bold"}]}]}]}`
	if got := sanitizeString(t, in); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_LinkMarks(t *testing.T) {
	cases := map[string]string{
		`{"type":"link","attrs":{"href":"/about"}}`:               `[{"type":"link","attrs":{"href":"/about"}}]`,
		`{"type":"link","attrs":{"href":"https://x.io/<b>a</b>"}}`: `[{"type":"link","attrs":{"href":"https://x.io/a"}}]`,
		`{"type":"link","attrs":{"href":"http://x.io"}}`:          `[{"type":"link","attrs":{"href":"http://x.io"}}]`,
		`{"type":"link"}`:                                          ``,
		`{"type":"link","attrs":{"href":42}}`:                      ``,
		`{"type":"link","attrs":{"href":" https://x.io"}}`:         ``,
		`{"type":"link","attrs":{"href":"data:text/html,x"}}`:      ``,
		`{"type":"paragraph"}`:                                     ``,
		`"bold"`:                                                   ``,
	}
	for mark, marks := range cases {
		in := `{"content":[{"type":"text","text":"t","marks":[` + mark + `]}]}`
		want := `{"type":"doc","content":[{"type":"text","text":"t"}]}`
		if marks != "" {
			want = `{"type":"doc","content":[{"type":"text","text":"t","marks":` + marks + `}]}`
		}
		if got := sanitizeString(t, in); got != want {
			t.Fatalf("mark %s: got %s, want %s", mark, got, want)
		}
	}
}

func TestRichText_UnknownOnlyChildRemovesContent(t *testing.T) {
	in := `{"content":[{"type":"paragraph","content":[{"type":"script","text":"alert(1)"}]}]}`
	want := `{"type":"doc","content":[{"type":"paragraph"}]}`
	if got := sanitizeString(t, in); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_PreservesSiblingOrder(t *testing.T) {
	in := `{"content":[
		{"type":"paragraph","content":[{"type":"text","text":"one"}]},
		{"type":"iframe"},
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"two"}]},
		null,
		{"type":"codeBlock","content":[{"type":"text","text":"three"}]}
	]}`
	doc := RichText([]byte(in))
	if len(doc.Content) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(doc.Content))
	}
	order := []string{KindParagraph, KindHeading, KindCodeBlock}
	for i, n := range doc.Content {
		if n.Type != order[i] {
			t.Fatalf("node %d: got %s, want %s", i, n.Type, order[i])
		}
	}
}

func TestRichText_ImageAttrs(t *testing.T) {
	cases := map[string]string{
		`{"src":"https://cdn.example.com/a.png","alt":"cat"}`:  `{"type":"image","attrs":{"alt":"cat"}}`,
		`{"src":"javascript:alert(1)"}`:                        `{"type":"image"}`,
		`{"src":"data:image/png;base64,AAAA","alt":"<i>x</i>"}`: `{"type":"image","attrs":{"src":"data:image/png;base64,AAAA","alt":"x"}}`,
		`{"src":"data:image/png;base64,AAAA","onerror":"x"}`:   `{"type":"image","attrs":{"src":"data:image/png;base64,AAAA"}}`,
	}
	for attrs, node := range cases {
		in := `{"content":[{"type":"image","attrs":` + attrs + `}]}`
		want := `{"type":"doc","content":[` + node + `]}`
		if got := sanitizeString(t, in); got != want {
			t.Fatalf("attrs %s: got %s, want %s", attrs, got, want)
		}
	}
}

func TestRichText_TextAlign(t *testing.T) {
	in := `{"content":[
		{"type":"paragraph","attrs":{"textAlign":"center"}},
		{"type":"paragraph","attrs":{"textAlign":"expression(alert(1))"}},
		{"type":"heading","attrs":{"level":2,"textAlign":"justify"}},
		{"type":"blockquote","attrs":{"textAlign":"left"}}
	]}`
	want := `{"type":"doc","content":[{"type":"paragraph","attrs":{"textAlign":"center"}},{"type":"paragraph"},{"type":"heading","attrs":{"level":2,"textAlign":"justify"}},{"type":"blockquote"}]}`
	if got := sanitizeString(t, in); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_DropsUnknownFieldsAndBadText(t *testing.T) {
	in := `{"content":[{"type":"paragraph","onclick":"x","style":"y","content":[{"type":"text","text":5}]}]}`
	want := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text"}]}]}`
	if got := sanitizeString(t, in); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_MarkKindsAcceptedAsNodes(t *testing.T) {
	in := `{"content":[{"type":"bold","content":[{"type":"text","text":"x"}]},{"type":"textStyle"}]}`
	want := `{"type":"doc","content":[{"type":"bold","content":[{"type":"text","text":"x"}]},{"type":"textStyle"}]}`
	if got := sanitizeString(t, in); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichText_AllKindsAllowListed(t *testing.T) {
	in := `{"content":[
		{"type":"bulletList","content":[
			{"type":"listItem","content":[
				{"type":"paragraph","content":[
					{"type":"text","text":"a","marks":[{"type":"em"},{"type":"italic"},{"type":"highlight"}]},
					{"type":"mention","attrs":{"id":"1"}},
					{"type":"hardBreak"}
				]},
				{"type":"table","content":[{"type":"tableRow"}]}
			]}
		]},
		{"type":"horizontalRule"},
		{"type":"embed","attrs":{"src":"https://evil"}}
	]}`
	p := DefaultPolicy()
	nodes := sliceToSet(p.NodeKinds)
	marks := sliceToSet(p.MarkKinds)
	doc, stats := p.DocumentStats([]byte(in))
	var walk func([]Node)
	walk = func(list []Node) {
		for _, n := range list {
			if !nodes[n.Type] {
				t.Fatalf("node kind %q not allowed", n.Type)
			}
			for _, m := range n.Marks {
				if !marks[m.Type] {
					t.Fatalf("mark kind %q not allowed", m.Type)
				}
			}
			walk(n.Content)
		}
	}
	walk(doc.Content)
	if stats.NodesDropped != 3 {
		t.Fatalf("expected 3 dropped nodes, got %d", stats.NodesDropped)
	}
	if stats.MarksDropped != 2 {
		t.Fatalf("expected 2 dropped marks, got %d", stats.MarksDropped)
	}
}

func TestPolicy_MaxDepth(t *testing.T) {
	p := DefaultPolicy()
	p.MaxDepth = 2
	in := `{"content":[{"type":"blockquote","content":[{"type":"blockquote","content":[{"type":"paragraph"}]}]}]}`
	doc, stats := p.DocumentStats([]byte(in))
	want := `{"type":"doc","content":[{"type":"blockquote","content":[{"type":"blockquote"}]}]}`
	if got := mustJSON(t, doc); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if stats.Limited != 1 {
		t.Fatalf("expected 1 limited node, got %d", stats.Limited)
	}
}

func TestPolicy_MaxNodes(t *testing.T) {
	p := DefaultPolicy()
	p.MaxNodes = 2
	in := `{"content":[{"type":"paragraph"},{"type":"paragraph"},{"type":"paragraph"}]}`
	doc, stats := p.DocumentStats([]byte(in))
	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(doc.Content))
	}
	if stats.Limited != 1 {
		t.Fatalf("expected 1 limited node, got %d", stats.Limited)
	}
}

func TestPolicy_DeepInputStaysValid(t *testing.T) {
	depth := 5000
	in := strings.Repeat(`{"type":"blockquote","content":[`, depth) + strings.Repeat(`]}`, depth)
	in = `{"content":[` + in + `]}`
	doc := RichText([]byte(in))
	got := 0
	for n := doc.Content; len(n) > 0; n = n[0].Content {
		got++
	}
	if got != DefaultMaxDepth {
		t.Fatalf("expected depth %d, got %d", DefaultMaxDepth, got)
	}
}

func TestRichTextValue_DecodedInput(t *testing.T) {
	v := map[string]any{
		"type": "doc",
		"content": []any{
			map[string]any{"type": "paragraph", "content": []any{
				map[string]any{"type": "text", "text": "hello &amp; bye"},
			}},
		},
	}
	want := `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello  bye"}]}]}`
	if got := mustJSON(t, RichTextValue(v)); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRichTextValue_SanitizedDocumentIsStable(t *testing.T) {
	in := `{"content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"T","marks":[{"type":"link","attrs":{"href":"/t"}}]}]}]}`
	once := RichText([]byte(in))
	twice := RichTextValue(once)
	if mustJSON(t, once) != mustJSON(t, twice) {
		t.Fatalf("second pass changed the document: %s vs %s", mustJSON(t, once), mustJSON(t, twice))
	}
}
