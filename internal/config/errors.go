package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue indicates a setting holds a value outside its allowed
// range or enum. Validation errors wrap it.
var ErrInvalidValue = errors.New("config: invalid value")

// ParseError reports a configuration file that could not be parsed.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Message describes the parse failure.
	Message string
	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func invalidValue(setting string, value any, allowed string) error {
	return fmt.Errorf("%w: %s = %v (%s)", ErrInvalidValue, setting, value, allowed)
}
