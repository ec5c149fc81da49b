package gcruntime

// CollectEphemeralAll runs the sequential, per-heap minor GC on every
// heap in turn. It is the safe fallback the parallel path
// degrades to when concurrency doesn't pay for itself (few heaps, or
// a single-threaded caller): each heap seeds, marks, compacts, and
// promotes strictly within its own four segments, with no cross-heap
// relocation broadcast. A live cross-heap reference rooted only on a
// different heap is therefore outside any one heap's local reachable
// set here; CollectEphemeralAllParallel is the cross-heap-sound path.
func (rt *Runtime) CollectEphemeralAll() error {
	rt.mu.RLock()
	heaps := rt.heaps
	rt.mu.RUnlock()

	for _, h := range heaps {
		if err := h.CollectSequential(); err != nil {
			return err
		}
	}
	return nil
}
