package wire

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/schema"
)

// Hard decode/encode failures. Unknown enum numbers and unknown or
// mismatched fields are not errors.
var (
	ErrTruncated         = errors.New("wire: truncated input")
	ErrMalformed         = errors.New("wire: malformed input")
	ErrOverflow          = errors.New("wire: varint overflows 64 bits")
	ErrNestingTooDeep    = errors.New("wire: message nesting too deep")
	ErrAllocationFailure = errors.New("wire: buffer allocation refused")

	ErrTypeMismatch = schema.ErrTypeMismatch
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["order", "items", "price"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at proto path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for compatibility.
func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}

// Path returns the dotted field path.
func (e *FieldError) Path() string {
	return strings.Join(e.FieldPath, ".")
}

// wrapWithField prepends fieldName to the path of err.
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
