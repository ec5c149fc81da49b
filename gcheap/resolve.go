package gcheap

import (
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// ResolveInSegment resolves an address known to lie in seg to its
// containing object's payload offset and registered type. It is the
// single-segment building block that Heap.Resolve (own segments) and
// the cross-heap address directory (gcruntime) both use.
func ResolveInSegment(seg *Segment, types map[uint64]*typelayout.TypeDesc, a rawmem.Address) (objOff int64, td *typelayout.TypeDesc, err error) {
	if !seg.Contains(a) {
		return 0, nil, invalidReferencef("address %v not in segment", a)
	}
	off := seg.region.AbsToOffset(a)
	typeId := ReadTypeID(seg.region, off)
	t, ok := types[typeId]
	if !ok {
		return 0, nil, invalidReferencef("address %v has unregistered typeId %d", a, typeId)
	}
	return off, t, nil
}
