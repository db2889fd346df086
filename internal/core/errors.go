package core

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec matches every ConfigurationError through errors.Is.
var ErrInvalidSpec = errors.New("invalid specification")

// ConfigurationError reports a structurally invalid specification passed by
// the caller, such as an unknown sort key or adjustment mode. It is never
// returned for inputs that merely produce an empty result.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid specification: unrecognized %s %q", e.Field, e.Value)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// NewConfigurationError is a shorthand used by the engines.
func NewConfigurationError(field, value string) error {
	return &ConfigurationError{Field: field, Value: value}
}
