package domain

import (
	"errors"
	"fmt"
)

// ConfigError marks a caller mistake: an unknown mode, inverted bounds, a
// missing required parameter. Retrying cannot fix it.
type ConfigError struct {
	msg string
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return e.msg
}

// IsConfigError reports whether any error in the chain is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
