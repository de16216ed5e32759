package processor

import (
	"errors"
	"fmt"
)

// ErrCancelled reports that processing stopped at a cancellation point. The
// result returned alongside it holds everything completed before that point.
var ErrCancelled = errors.New("processing cancelled")

// IsCancelled reports whether err is the cancellation sentinel.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ValidationError describes a defect confined to a single row. It is recorded
// as a diagnostic and never aborts the run.
type ValidationError struct {
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
