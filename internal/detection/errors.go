package detection

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid parameter set. It is returned before any
// pixel is read and never accompanies a partial result.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
