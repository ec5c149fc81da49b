package diag

import "fmt"

// Warnings accumulates non-fatal problems noticed while building a
// report. A reader that hits something odd (a truncated segment, an
// unresolvable pointer) doesn't abort, it keeps going and reports the
// anomaly to the caller alongside whatever it still managed to build.
type Warnings struct {
	items []string
}

// Addf records a formatted warning.
func (w *Warnings) Addf(format string, args ...any) {
	w.items = append(w.items, fmt.Sprintf(format, args...))
}

// All returns every warning recorded so far, in order.
func (w *Warnings) All() []string {
	return w.items
}
