package worker

import (
	"errors"
	"fmt"
)

// ErrPanic wraps a panic recovered from a job or its error hook.
var ErrPanic = errors.New("panic")

// panicToError converts a recovered panic value to an error matching ErrPanic.
func panicToError(v interface{}) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, v)
}
