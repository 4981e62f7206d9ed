// Package sanitize filters untrusted editor output before it is sent to the
// content API. It covers three shapes: plain text fields, the TipTap JSON
// document tree produced by the rich-text editor, and the flat content block
// list produced by the structured editor. None of the functions in this
// package return errors; malformed input degrades to omitted values.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// Length caps applied by the named text sanitizers.
const (
	// GeneralLimit caps free text such as blog titles, excerpts, authors and link targets.
	GeneralLimit = 10000
	// TagNameLimit caps short labels.
	TagNameLimit = 100
	// TagDescriptionLimit caps medium free text such as tag descriptions.
	TagDescriptionLimit = 500
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Text sanitizes a general free-text field.
func Text(s string) string {
	return Truncate(s, GeneralLimit)
}

// TagName sanitizes a tag name.
func TagName(s string) string {
	return Truncate(s, TagNameLimit)
}

// TagDescription sanitizes a tag description.
func TagDescription(s string) string {
	return Truncate(s, TagDescriptionLimit)
}

// Clean sanitizes an arbitrary decoded value. Anything that is not a
// non-empty string yields "".
func Clean(v any, max int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Truncate(s, max)
}

// Truncate removes markup-looking tags and character entities from s, trims
// surrounding whitespace and caps the result at max code points. A max of
// zero or less disables the cap.
func Truncate(s string, max int) string {
	if s == "" {
		return ""
	}
	s = stripEntities(tagPattern.ReplaceAllString(s, ""))
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimRightFunc(s[:i], unicode.IsSpace)
		}
		n++
	}
	return s
}

// stripEntities deletes every "&name;" run (name made of ASCII word
// characters or '#') until none is left. Removing one entity can splice a
// new one together ("&&x;x;"), so the output is kept as a stack and each ';'
// pops back to the nearest '&' when only name characters lie between them.
// This reaches the same fixpoint as repeated regexp replacement in one pass.
func stripEntities(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	out := make([]byte, 0, len(s))
	// lastStop[i] is the index of the last byte in out[:i+1] that is not a
	// name character, or -1.
	lastStop := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ';' && len(out) > 0 {
			if j := lastStop[len(out)-1]; j >= 0 && j < len(out)-1 && out[j] == '&' {
				out, lastStop = out[:j], lastStop[:j]
				continue
			}
		}
		stop := len(out)
		if isEntityNameByte(c) {
			stop = -1
			if len(lastStop) > 0 {
				stop = lastStop[len(lastStop)-1]
			}
		}
		out = append(out, c)
		lastStop = append(lastStop, stop)
	}
	return string(out)
}

func isEntityNameByte(c byte) bool {
	return c == '#' || c == '_' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
