package gcruntime

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// Runtime owns every heap in a process, the cross-heap address
// directory, and the TypeId counter for the types it broadcasts into
// every heap's own type table. It is
// the top-level collector entry point: mutators attach to it, allocate
// through it, and its write barrier and minor GCs are the only place
// cross-heap state is resolved.
type Runtime struct {
	mu sync.RWMutex

	heaps []*gcheap.Heap
	dir   *addressDirectory

	nextTypeId uint64
	nextMutator uint64
}

// NewRuntime builds cfg.HeapCount independent heaps, one per logical
// CPU affinity group.
func NewRuntime(cfg gcheap.Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt := &Runtime{}
	for i := 0; i < cfg.HeapCount; i++ {
		h, err := gcheap.NewHeap(i, cfg)
		if err != nil {
			return nil, fmt.Errorf("building heap %d: %w", i, err)
		}
		h.CollectLocal = h.CollectSequential
		rt.heaps = append(rt.heaps, h)
	}
	rt.rebuildDirectory()
	return rt, nil
}

func (rt *Runtime) rebuildDirectory() {
	rt.dir = buildDirectory(rt.heaps)
}

// Heaps returns every heap this runtime owns, in index order.
func (rt *Runtime) Heaps() []*gcheap.Heap { return rt.heaps }

// HeapCount returns the number of heaps.
func (rt *Runtime) HeapCount() int { return len(rt.heaps) }

// Mutator is a handle a caller holds for the lifetime of one logical
// thread of execution. Go has no portable notion of an OS thread or
// CPU id, so a Mutator is pinned to a heap via a synthetic,
// round-robin id assigned once at AttachMutator time and cached for
// the Mutator's lifetime, standing in for "affine to one heap, chosen
// by CPU id at thread start" in a runtime with no real CPU ids to
// read.
type Mutator struct {
	id        uint64
	heapIndex int
}

// AttachMutator assigns a new mutator to a heap via an atomically
// incrementing counter mod HeapCount, giving a stable round-robin
// affinity across concurrently-attaching goroutines.
func (rt *Runtime) AttachMutator() *Mutator {
	n := atomic.AddUint64(&rt.nextMutator, 1)
	rt.mu.RLock()
	heapCount := len(rt.heaps)
	rt.mu.RUnlock()
	return &Mutator{id: n, heapIndex: int(n-1) % heapCount}
}

func (m *Mutator) Heap(rt *Runtime) *gcheap.Heap {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.heaps[m.heapIndex]
}

// RegisterType assigns td a TypeId if it doesn't have one, computes
// its layout, and broadcasts it to every heap's type table: types are
// process-global and shared by every heap.
func (rt *Runtime) RegisterType(td *typelayout.TypeDesc) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if td.TypeId == 0 {
		rt.nextTypeId++
		td.TypeId = rt.nextTypeId
	}
	if err := typelayout.ComputeLayout(td); err != nil {
		return fmt.Errorf("registering type %q: %w", td.Name, err)
	}
	for _, h := range rt.heaps {
		if err := h.RegisterType(td); err != nil {
			return err
		}
	}
	return nil
}

// AttachArena creates a fresh non-moving arena on heapIndex and
// returns it, rebuilding the address directory so it is immediately
// visible to the write barrier and the parallel collector.
func (rt *Runtime) AttachArena(heapIndex int, size int64) (*gcheap.Arena, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if heapIndex < 0 || heapIndex >= len(rt.heaps) {
		return nil, fmt.Errorf("attach region: heap index %d out of range", heapIndex)
	}
	a, err := gcheap.NewArena(size)
	if err != nil {
		return nil, err
	}
	rt.heaps[heapIndex].AttachArena(a)
	rt.rebuildDirectory()
	return a, nil
}

// DetachArena removes and destroys a previously attached arena.
func (rt *Runtime) DetachArena(heapIndex int, a *gcheap.Arena) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if heapIndex < 0 || heapIndex >= len(rt.heaps) {
		return fmt.Errorf("detach region: heap index %d out of range", heapIndex)
	}
	rt.heaps[heapIndex].DetachArena(a)
	rt.rebuildDirectory()
	return a.Destroy()
}

// Alloc allocates an object of type td on mutator m's home heap.
func (rt *Runtime) Alloc(m *Mutator, td *typelayout.TypeDesc, forced gcheap.Generation) (rawmem.Address, error) {
	h := m.Heap(rt)
	return h.Alloc(m.id, td, forced)
}

// SetRoot records a named root on mutator m's home heap.
func (rt *Runtime) SetRoot(m *Mutator, name string, ref rawmem.Address) error {
	h := m.Heap(rt)
	return h.SetRoot(name, ref)
}

// Destroy frees every heap's generation buffers.
func (rt *Runtime) Destroy() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	var firstErr error
	for _, h := range rt.heaps {
		if err := h.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
