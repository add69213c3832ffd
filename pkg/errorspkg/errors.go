// Package errorspkg provides common app errors.
package errorspkg

import (
	"errors"
	"fmt"
)

// ErrInternal indicates internal server error.
var ErrInternal = errors.New("internal")

// ErrTimeout indicates that a lock wait or commit exceeded its deadline.
// It is an internal error: errors.Is(ErrTimeout, ErrInternal) is true.
var ErrTimeout = fmt.Errorf("%w: operation timed out", ErrInternal)
