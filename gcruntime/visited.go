package gcruntime

import (
	"sync"

	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
)

// visited is the global mark-first set shared by every worker during a
// parallel minor GC: an object is pushed onto exactly one heap's
// worklist, whichever goroutine's CAS-equivalent insert wins the race.
// sync.Map's LoadOrStore already gives this insert-if-absent semantics
// without a hand-rolled compare-and-swap loop.
type visited struct {
	m sync.Map
}

// insertIfAbsent returns true the first time a is recorded and false
// on every subsequent call, from any goroutine.
func (v *visited) insertIfAbsent(a rawmem.Address) bool {
	_, loaded := v.m.LoadOrStore(a, struct{}{})
	return !loaded
}

func (v *visited) has(a rawmem.Address) bool {
	_, ok := v.m.Load(a)
	return ok
}

func (v *visited) len() int {
	n := 0
	v.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
