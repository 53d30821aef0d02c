package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports an unknown neighborhood identifier. Not retryable.
type NotFoundError struct {
	NeighborhoodID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("neighborhood %q not found", e.NeighborhoodID)
}

// InvalidInputError reports a physically impossible snapshot value rejected at
// the validation boundary. Not retryable; the caller should re-validate its
// upstream data source.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError reports malformed reference data or engine configuration
// detected at load time. Fatal at startup: the engine must not serve requests
// over a broken baseline.
type ConfigurationError struct {
	Detail string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Detail, e.Err)
	}
	return "configuration: " + e.Detail
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}
