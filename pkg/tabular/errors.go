package tabular

import (
	"errors"
	"fmt"
)

// ConfigurationError signals that a column the operation depends on could not
// be resolved in a table's schema. Every row would fail identically, so the
// whole operation aborts; this is never degraded to a zero match score.
type ConfigurationError struct {
	Column string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required column %q not found in table", e.Column)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
