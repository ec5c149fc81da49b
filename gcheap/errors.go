package gcheap

import (
	"errors"
	"fmt"
)

// Sentinel errors distinguishing the kinds of failure a caller needs
// to branch on. Callers use errors.Is against these; wrapped context
// is added with %w.
var (
	ErrOutOfMemory      = errors.New("gcheap: out of memory")
	ErrInvalidReference = errors.New("gcheap: invalid reference")
	ErrBadReferenceEdge = errors.New("gcheap: bad reference edge")
	ErrBadArgument      = errors.New("gcheap: bad argument")
)

func outOfMemoryf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOutOfMemory}, args...)...)
}

func invalidReferencef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidReference}, args...)...)
}

func badArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrBadArgument}, args...)...)
}
