package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// ErrValidation is matched by every *Error returned from this package.
var ErrValidation = errors.New("validation failed")

// Issue describes one rejected field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates field issues for a single payload.
type Error struct {
	Issues []Issue `json:"issues"`
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *Error) Is(target error) bool { return target == ErrValidation }

// Fields returns the rejected field names in report order.
func (e *Error) Fields() []string {
	out := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		out = append(out, is.Field)
	}
	return out
}

// Collector accumulates issues so a form reports every problem at once.
type Collector struct {
	issues []Issue
}

// Add records an issue for field.
func (c *Collector) Add(field, format string, args ...any) {
	c.issues = append(c.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Required rejects values that are blank after trimming.
func (c *Collector) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "is required")
		return false
	}
	return true
}

// Email rejects values that do not parse as a single bare address.
func (c *Collector) Email(field, value string) bool {
	v := strings.TrimSpace(value)
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndex(v, "@")+1:], ".") {
		c.Add(field, "must be a valid email address")
		return false
	}
	return true
}

// Range rejects integers outside [lo, hi].
func (c *Collector) Range(field string, value, lo, hi int) bool {
	if value < lo || value > hi {
		c.Add(field, "must be between %d and %d", lo, hi)
		return false
	}
	return true
}

// HTTPURL rejects values that are not absolute http(s) URLs with a host.
// Blank values pass; pair with Required when the field is mandatory.
func (c *Collector) HTTPURL(field, value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.Add(field, "must be an absolute http(s) URL")
		return false
	}
	return true
}

// Err returns nil when no issues were recorded.
func (c *Collector) Err() error {
	if len(c.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return &Error{Issues: out}
}
