package app

import (
	"errors"

	"github.com/Inkubator-IT/admin/internal/content"
)

// ErrNoInputs is returned when the input path yields no payloads. Per the
// exit code policy this results in exit status 2.
var ErrNoInputs = errors.New("no input payloads")

// ErrUnknownFormat is returned when a payload format cannot be determined or
// an unknown -format value is given.
var ErrUnknownFormat = errors.New("unknown payload format")

// ErrValidation is matched by runs where at least one payload failed form
// validation.
var ErrValidation = content.ErrValidation

// ErrMalformed is matched by payloads that could not be decoded or whose
// format could not be detected. Like validation failures they are rejected
// one by one without stopping the run.
var ErrMalformed = content.ErrMalformed

// rejected reports whether err rejects a single payload rather than the run.
func rejected(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrMalformed)
}
