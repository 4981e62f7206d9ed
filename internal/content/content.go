// Package content holds the request payloads the admin dashboard sends to
// the backend for each resource, with the field sanitization and form
// validation applied before submission.
package content

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Inkubator-IT/admin/internal/sanitize"
	"github.com/Inkubator-IT/admin/internal/validate"
)

// ErrValidation is matched by every validation failure from this package.
var ErrValidation = validate.ErrValidation

// ErrMalformed is matched by payloads that do not decode into their request
// type.
var ErrMalformed = errors.New("malformed payload")

// ValidationError lists the rejected fields of one payload.
type ValidationError = validate.Error

// Kind names a resource payload.
type Kind string

const (
	KindBlog      Kind = "blog"
	KindTag       Kind = "tag"
	KindProject   Kind = "project"
	KindTechStack Kind = "techstack"
	KindService   Kind = "service"
	KindClient    Kind = "client"
)

// Kinds lists every resource payload kind.
var Kinds = []Kind{KindBlog, KindTag, KindProject, KindTechStack, KindService, KindClient}

// Payload is a decoded resource request.
type Payload interface {
	// Sanitized returns a cleaned copy and what the rich-text pass removed.
	Sanitized(p *sanitize.Policy) (Payload, sanitize.Stats)
	// Validate reports missing or malformed fields.
	Validate() error
}

// Decode unmarshals raw into the request type for kind.
func Decode(kind Kind, raw []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch kind {
	case KindBlog:
		var v BlogRequest
		err = json.Unmarshal(raw, &v)
		p = v
	case KindTag:
		var v TagRequest
		err = json.Unmarshal(raw, &v)
		p = v
	case KindProject:
		var v ProjectRequest
		err = json.Unmarshal(raw, &v)
		p = v
	case KindTechStack:
		var v TechStackRequest
		err = json.Unmarshal(raw, &v)
		p = v
	case KindService:
		var v ServiceRequest
		err = json.Unmarshal(raw, &v)
		p = v
	case KindClient:
		var v ClientInformationRequest
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrMalformed, kind, err)
	}
	return p, nil
}

// MaxImageBytes is the upload cap for thumbnails and project images.
const MaxImageBytes = 10 * 1024 * 1024

// ValidateImage checks an upload before it is sent to storage.
func ValidateImage(contentType string, size int64) error {
	var c validate.Collector
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		c.Add("image", "must be an image file")
	}
	if size > MaxImageBytes {
		c.Add("image", "must be at most %d MB", MaxImageBytes/(1024*1024))
	}
	return c.Err()
}

// imageRef sanitizes an image reference. Inline data: uploads are kept
// verbatim so the text cap cannot cut the encoded bytes.
func imageRef(s string) string {
	v := strings.TrimSpace(s)
	if hasDataScheme(v) && !strings.ContainsAny(v, "<>&") {
		return v
	}
	return sanitize.Text(s)
}

func hasDataScheme(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// checkInlineImage applies ValidateImage to a data: URI upload. Other
// references are left alone.
func checkInlineImage(c *validate.Collector, field, ref string) {
	if !hasDataScheme(ref) {
		return
	}
	meta, data, _ := strings.Cut(ref[5:], ",")
	mediaType, params, _ := strings.Cut(meta, ";")
	size := int64(len(data))
	if strings.Contains(strings.ToLower(";"+params), ";base64") {
		size = int64(base64.StdEncoding.DecodedLen(len(data)))
	}
	var ve *ValidationError
	if err := ValidateImage(mediaType, size); errors.As(err, &ve) {
		for _, is := range ve.Issues {
			c.Add(field, "%s", is.Message)
		}
	}
}

// Response is the envelope every backend endpoint replies with.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T, message string) Response[T] {
	return Response[T]{Success: true, Data: data, Message: message}
}

// Fail wraps err in a failed envelope.
func Fail[T any](err error, message string) Response[T] {
	r := Response[T]{Message: message}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify turns a title into a lower-case, hyphen separated URL slug.
// Accents are folded to their base letters and anything that is not a
// letter or digit becomes a separator.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), sanitize.Text(title))
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
