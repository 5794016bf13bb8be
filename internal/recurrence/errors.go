package recurrence

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every *ConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid schedule configuration")

// ConfigError reports a malformed schedule configuration. It is returned
// before any computation happens.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid schedule configuration: %s: %s", e.Field, e.Reason)
}

// Is lets callers test errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NewConfigError builds a *ConfigError for callers validating their own
// extensions of Config.
func NewConfigError(field, format string, args ...any) error {
	return configErr(field, format, args...)
}
