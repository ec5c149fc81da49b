package gcruntime

import (
	"sync"

	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
)

// worklist is a per-heap LIFO mark stack: the owning worker pushes and
// pops from it locally, and any other worker may steal from it when
// its own stack runs dry. A single mutex-guarded slice serves both the
// local and stolen paths; a goroutine-scheduled workload has no need
// for a lock-free fast path.
type worklist struct {
	mu    sync.Mutex
	items []rawmem.Address
}

func newWorklist() *worklist {
	return &worklist{}
}

func (w *worklist) push(a rawmem.Address) {
	w.mu.Lock()
	w.items = append(w.items, a)
	w.mu.Unlock()
}

// pop removes and returns the most recently pushed item. Used both by
// the owning worker and by a stealer; both take the same lock so a
// single item is never handed out twice.
func (w *worklist) pop() (rawmem.Address, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.items)
	if n == 0 {
		return 0, false
	}
	a := w.items[n-1]
	w.items = w.items[:n-1]
	return a, true
}

func (w *worklist) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
