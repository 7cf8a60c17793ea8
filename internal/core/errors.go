package core

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and evaluation.
var (
	// ErrMissingField indicates a required field is absent from a record.
	ErrMissingField = errors.New("mcsim: required field missing")

	// ErrUnknownVariant indicates an unrecognised potential, bond or move tag.
	ErrUnknownVariant = errors.New("mcsim: unknown variant")

	// ErrInvalidValue indicates a field is present but has the wrong type or range.
	ErrInvalidValue = errors.New("mcsim: invalid value")

	// ErrUnimplemented indicates a variant that is parsed but cannot be evaluated.
	ErrUnimplemented = errors.New("mcsim: not implemented")

	// ErrUnknownName indicates a reference to an atom or molecule that is not in the catalog.
	ErrUnknownName = errors.New("mcsim: unknown name")
)

// ParseError wraps a configuration error with the key that caused it.
type ParseError struct {
	Key     string
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// Errorf builds a ParseError for key wrapping sentinel with extra detail.
func Errorf(key string, sentinel error, format string, args ...any) *ParseError {
	return &ParseError{Key: key, Wrapped: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}
