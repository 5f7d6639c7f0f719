package feko

import (
	"errors"
	"fmt"
)

var (
	ErrFrameMismatch      = errors.New("feko: header frame markers do not match")
	ErrUnknownPrecision   = errors.New("feko: unknown precision code")
	ErrRowFrameMismatch   = errors.New("feko: row frame markers do not match")
	ErrVersionUnsupported = errors.New("feko: file version is not supported")
	ErrInvalidDimensions  = errors.New("feko: invalid matrix dimensions")
	ErrMatrixTooLarge     = errors.New("feko: matrix too large")
)

// FieldError reports a header field that could not be read or whose
// frame markers disagree with the expected payload length.
type FieldError struct {
	Field     string
	Prefix    int32
	Suffix    int32
	Want      int32
	// Truncated is set when the field ended before its suffix; Suffix is then unknown.
	Truncated bool
	Err       error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrFrameMismatch) && e.Truncated {
		return fmt.Sprintf("%v: field %q has prefix %d and ends early, want %d",
			e.Err, e.Field, e.Prefix, e.Want)
	}
	if errors.Is(e.Err, ErrFrameMismatch) {
		return fmt.Sprintf("%v: field %q has markers (%d, %d), want (%d, %d)",
			e.Err, e.Field, e.Prefix, e.Suffix, e.Want, e.Want)
	}
	return fmt.Sprintf("feko: read header field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// RowError reports the row record that stopped a matrix decode.
type RowError struct {
	Row       int
	Prefix    int32
	Suffix    int32
	Want      int32
	// Truncated is set when the record ended before its suffix; Suffix is then unknown.
	Truncated bool
	Err       error
}

func (e *RowError) Error() string {
	if errors.Is(e.Err, ErrRowFrameMismatch) && e.Truncated {
		return fmt.Sprintf("%v: row %d has prefix %d and ends early, want %d",
			e.Err, e.Row, e.Prefix, e.Want)
	}
	if errors.Is(e.Err, ErrRowFrameMismatch) {
		return fmt.Sprintf("%v: row %d has markers (%d, %d), want (%d, %d)",
			e.Err, e.Row, e.Prefix, e.Suffix, e.Want, e.Want)
	}
	return fmt.Sprintf("feko: read row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
