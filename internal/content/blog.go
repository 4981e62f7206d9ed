package content

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Inkubator-IT/admin/internal/budget"
	"github.com/Inkubator-IT/admin/internal/sanitize"
	"github.com/Inkubator-IT/admin/internal/validate"
)

// BodyFormat names the shape of a blog body.
type BodyFormat string

const (
	BodyDocument BodyFormat = "doc"
	BodyBlocks   BodyFormat = "blocks"
)

// BlogRequest is the create and update payload for a blog post. Content
// holds either a rich document or a flat block list.
type BlogRequest struct {
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Slug      string          `json:"slug"`
	Excerpt   string          `json:"excerpt"`
	Thumbnail string          `json:"thumbnail"`
	Content   json.RawMessage `json:"content"`
	TimeRead  string          `json:"time_read"`
	TagID     int             `json:"tag_id"`
}

// DetectBody reports whether raw is a block list or a document.
func DetectBody(raw []byte) BodyFormat {
	if gjson.ParseBytes(raw).IsArray() {
		return BodyBlocks
	}
	return BodyDocument
}

// Sanitized cleans every free-text field and the body. An empty slug is
// derived from the title and an empty time_read from the body length.
func (r BlogRequest) Sanitized(p *sanitize.Policy) (Payload, sanitize.Stats) {
	out := r
	out.Title = sanitize.Text(r.Title)
	out.Author = sanitize.Text(r.Author)
	out.Excerpt = sanitize.Text(r.Excerpt)
	out.Thumbnail = imageRef(r.Thumbnail)
	out.TimeRead = sanitize.Text(r.TimeRead)
	if slug := Slugify(r.Slug); slug != "" {
		out.Slug = slug
	} else {
		out.Slug = Slugify(out.Title)
	}

	var (
		body []byte
		doc  sanitize.Document
		st   sanitize.Stats
	)
	if DetectBody(r.Content) == BodyBlocks {
		var blocks []sanitize.ContentBlock
		blocks, st = p.Blocks(r.Content)
		doc = sanitize.BlocksToDocument(blocks)
		body, _ = json.Marshal(blocks)
	} else {
		doc, st = p.DocumentStats(r.Content)
		body, _ = json.Marshal(doc)
	}
	out.Content = body
	if out.TimeRead == "" {
		out.TimeRead = budget.ReadingTime(sanitize.WordCount(doc))
	}
	return out, st
}

// WithBody returns r with its already sanitized body rewritten to the
// requested shape. Bodies already in that shape are returned unchanged.
func (r BlogRequest) WithBody(to BodyFormat) BlogRequest {
	if to == "" || len(r.Content) == 0 || DetectBody(r.Content) == to {
		return r
	}
	var (
		body []byte
		err  error
	)
	switch to {
	case BodyBlocks:
		var doc sanitize.Document
		if err = json.Unmarshal(r.Content, &doc); err == nil {
			body, err = json.Marshal(sanitize.DocumentToBlocks(doc))
		}
	case BodyDocument:
		var blocks []sanitize.ContentBlock
		if err = json.Unmarshal(r.Content, &blocks); err == nil {
			body, err = json.Marshal(sanitize.BlocksToDocument(blocks))
		}
	default:
		return r
	}
	if err != nil {
		return r
	}
	r.Content = body
	return r
}

// Validate requires a title, an author and a non-empty body. An inline
// thumbnail upload must be an image within MaxImageBytes.
func (r BlogRequest) Validate() error {
	var c validate.Collector
	c.Required("title", r.Title)
	c.Required("author", r.Author)
	if !hasBody(r.Content) {
		c.Add("content", "is required")
	}
	if strings.HasPrefix(strings.TrimSpace(r.Thumbnail), "http") {
		c.HTTPURL("thumbnail", r.Thumbnail)
	}
	checkInlineImage(&c, "thumbnail", r.Thumbnail)
	return c.Err()
}

func hasBody(raw []byte) bool {
	res := gjson.ParseBytes(raw)
	if res.IsArray() {
		return len(res.Array()) > 0
	}
	return len(res.Get("content").Array()) > 0
}
