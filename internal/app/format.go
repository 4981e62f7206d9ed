package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Inkubator-IT/admin/internal/content"
	"github.com/Inkubator-IT/admin/internal/sanitize"
)

// Format names the payload shape a file holds.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatDocument  Format = "doc"
	FormatBlocks    Format = "blocks"
	FormatBlog      Format = Format(content.KindBlog)
	FormatTag       Format = Format(content.KindTag)
	FormatProject   Format = Format(content.KindProject)
	FormatTechStack Format = Format(content.KindTechStack)
	FormatService   Format = Format(content.KindService)
	FormatClient    Format = Format(content.KindClient)
	FormatHTML      Format = "html"
	FormatMarkdown  Format = "markdown"
)

// Formats lists every accepted -format value.
var Formats = []Format{
	FormatAuto, FormatDocument, FormatBlocks,
	FormatBlog, FormatTag, FormatProject, FormatTechStack, FormatService, FormatClient,
	FormatHTML, FormatMarkdown,
}

// ParseFormat accepts a -format value case-insensitively. Empty means auto.
func ParseFormat(s string) (Format, error) {
	v := Format(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return FormatAuto, nil
	}
	for _, f := range Formats {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// resource reports whether f is one of the resource request payloads.
func (f Format) resource() bool {
	for _, k := range content.Kinds {
		if Format(k) == f {
			return true
		}
	}
	return false
}

var blockTypes = map[string]bool{
	string(sanitize.BlockParagraph): true,
	string(sanitize.BlockHeader):    true,
	string(sanitize.BlockQuote):     true,
}

// DetectFormat guesses the payload format from the file extension and, for
// JSON, from the keys present at the top level.
func DetectFormat(name string, raw []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: %s is not JSON", ErrUnknownFormat, name)
	}
	root := gjson.ParseBytes(raw)
	if root.IsArray() {
		first := root.Get("0")
		if !first.Exists() || blockTypes[first.Get("type").String()] {
			return FormatBlocks, nil
		}
		return "", fmt.Errorf("%w: %s is an array of unknown items", ErrUnknownFormat, name)
	}
	if !root.IsObject() {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	has := func(key string) bool { return root.Get(key).Exists() }
	switch {
	case root.Get("type").String() == sanitize.KindDoc:
		return FormatDocument, nil
	case has("tag_name"):
		return FormatTag, nil
	case has("tech_stack_name"):
		return FormatTechStack, nil
	case has("service_name"):
		return FormatService, nil
	case has("nama_lengkap"):
		return FormatClient, nil
	case has("owner"):
		return FormatProject, nil
	case has("title") && has("content"):
		return FormatBlog, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}
