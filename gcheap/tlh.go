package gcheap

// TLH is a thread-local nursery slab carved out of a heap's Gen0
// segment. Invariant: slabStart <= slabCursor <= slabLimit <=
// segment.Size(). A TLH with a nil segment is unbound.
type TLH struct {
	segment    *Segment
	slabStart  int64
	slabCursor int64
	slabLimit  int64
}

// Bound reports whether the TLH currently owns a live slab.
func (t *TLH) Bound() bool {
	return t.segment != nil
}

// Remaining returns the number of bytes left in the current slab, or 0
// if unbound.
func (t *TLH) Remaining() int64 {
	if !t.Bound() {
		return 0
	}
	return t.slabLimit - t.slabCursor
}

// Invalidate detaches the TLH from its nursery, e.g. after a
// collection has reclaimed or moved Gen0.
func (t *TLH) Invalidate() {
	t.segment = nil
	t.slabStart = 0
	t.slabCursor = 0
	t.slabLimit = 0
}
