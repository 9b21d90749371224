package irma

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCodeLength is returned when a code is too short for the requested axis
	ErrInvalidCodeLength = errors.New("invalid IRMA code length")
	// ErrUnknownSubcode is returned when an anatomical code has no body region mapping
	ErrUnknownSubcode = errors.New("unknown IRMA subcode")
)

// CodeError records the decoding step and the code that failed
type CodeError struct {
	Op   string // Decoding step, e.g. "anatomical_code"
	Code string // Offending code as passed in
	Err  error  // One of the sentinel errors above
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("irma %s %q: %v", e.Op, e.Code, e.Err)
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

func codeError(op, code string, err error) error {
	return &CodeError{Op: op, Code: code, Err: err}
}
