package fitfile

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEssentialData = errors.New("missing start time or elapsed time")
	ErrNoSession            = errors.New("no session message found")
	ErrUnsupportedFormat    = errors.New("unsupported activity file format")
)

// DecodeError is returned when neither the primary nor the fallback decoder could read a file.
type DecodeError struct {
	Path     string
	Primary  error
	Fallback error
}

func (e *DecodeError) Error() string {
	if e.Fallback == nil {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Primary)
	}
	return fmt.Sprintf("decode %s: primary: %v; fallback: %v", e.Path, e.Primary, e.Fallback)
}

func (e *DecodeError) Unwrap() []error {
	var errs []error
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}
