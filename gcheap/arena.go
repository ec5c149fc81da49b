package gcheap

import "github.com/haldane-systems/ephemeralgc/internal/rawmem"

// Arena is a non-moving region: external to the collector, holding
// objects that are never moved and can never be traced into from
// managed memory. It is attached to a Heap only so that address
// lookups (ContainsAddress) can classify its addresses, and so that
// the write barrier can reject managed->Region reference stores.
//
// An Arena keeps its own set of "external GC roots": addresses a
// region->managed write has recorded, which the minor GC seeds from
// alongside ordinary heap roots.
type Arena struct {
	segment       *Segment
	externalRoots map[rawmem.Address]struct{}
}

// NewArena reserves size bytes of unmanaged memory for a non-moving
// arena.
func NewArena(size int64) (*Arena, error) {
	seg, err := NewSegment(Region, size, 256, 2048)
	if err != nil {
		return nil, err
	}
	return &Arena{segment: seg, externalRoots: make(map[rawmem.Address]struct{})}, nil
}

func (a *Arena) Segment() *Segment { return a.segment }

// RecordExternalRoot records that the region now holds a pointer to a
// managed object at addr.
func (a *Arena) RecordExternalRoot(addr rawmem.Address) {
	a.externalRoots[addr] = struct{}{}
}

// ExternalRoots returns every recorded region->managed root address.
func (a *Arena) ExternalRoots() []rawmem.Address {
	roots := make([]rawmem.Address, 0, len(a.externalRoots))
	for addr := range a.externalRoots {
		roots = append(roots, addr)
	}
	return roots
}

// Destroy releases the arena's unmanaged buffer. The caller must also
// detach it from any Heap it was attached to (Heap.DetachArena).
func (a *Arena) Destroy() error {
	return a.segment.Free()
}
