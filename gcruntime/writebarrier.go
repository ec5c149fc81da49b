package gcruntime

import (
	"fmt"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// resolveGlobal resolves an address to its owning segment/heap/type
// using the cross-heap directory, rather than any one heap's own
// four-segment ContainsAddress. Every write-barrier entry point needs
// this because the object being written to may live on any heap, not
// just the calling mutator's.
func (rt *Runtime) resolveGlobal(a rawmem.Address) (entry directoryEntry, objOff int64, td *typelayout.TypeDesc, err error) {
	rt.mu.RLock()
	dir := rt.dir
	rt.mu.RUnlock()

	e, ok := dir.lookup(a)
	if !ok {
		return directoryEntry{}, 0, nil, gcheap.ErrInvalidReference
	}
	off, t, err := gcheap.ResolveInSegment(e.seg, rt.heaps[e.heapIndex].Types(), a)
	if err != nil {
		return directoryEntry{}, 0, nil, err
	}
	return e, off, t, nil
}

// SetInt32 writes an Int32-kind field. No barrier work is needed: the
// card table only tracks reference-shaped writes.
func (rt *Runtime) SetInt32(obj rawmem.Address, fieldName string, v int32) error {
	e, objOff, td, err := rt.resolveGlobal(obj)
	if err != nil {
		return err
	}
	fieldOff, err := gcheap.FieldInt32Offset(td, fieldName)
	if err != nil {
		return err
	}
	e.seg.Region().WriteU32(objOff+gcheap.HeaderSize+fieldOff, uint32(v))
	return nil
}

// SetRef is the reference write barrier: it rejects a managed object
// pointing into a non-moving region (regions can be destroyed en
// masse, which would dangle the pointer), then writes the field and,
// depending on where the parent and child each live, dirties a card
// or records an external root so the next minor GC can find the edge.
func (rt *Runtime) SetRef(obj rawmem.Address, fieldName string, child rawmem.Address) error {
	e, objOff, td, err := rt.resolveGlobal(obj)
	if err != nil {
		return err
	}
	fieldOff, err := gcheap.FieldRefOffset(td, fieldName)
	if err != nil {
		return err
	}
	return rt.applyRefWrite(e, objOff, fieldOff, child)
}

// SetStructRef implements the same barrier as SetRef, but for a
// Ref-kind field nested one level inside a Struct-kind field.
func (rt *Runtime) SetStructRef(obj rawmem.Address, structField, nestedField string, child rawmem.Address) error {
	e, objOff, td, err := rt.resolveGlobal(obj)
	if err != nil {
		return err
	}
	fieldOff, err := gcheap.FieldStructRefOffset(td, structField, nestedField)
	if err != nil {
		return err
	}
	return rt.applyRefWrite(e, objOff, fieldOff, child)
}

func (rt *Runtime) applyRefWrite(e directoryEntry, objOff, fieldOff int64, child rawmem.Address) error {
	absFieldOff := objOff + gcheap.HeaderSize + fieldOff

	rt.mu.RLock()
	dir := rt.dir
	rt.mu.RUnlock()

	if child != 0 && e.seg.Generation().Managed() {
		if childEntry, ok := dir.lookup(child); ok && childEntry.arena != nil {
			return fmt.Errorf("%w: managed object cannot reference region object at %v", gcheap.ErrBadReferenceEdge, child)
		}
	}

	e.seg.Region().WriteAddr(absFieldOff, child)

	if child == 0 {
		return nil
	}

	if e.seg.Generation().Old() && dir.isEphemeral(child) {
		e.seg.Cards().MarkDirtyByOffset(absFieldOff)
	}
	if e.arena != nil {
		e.arena.RecordExternalRoot(child)
	}
	return nil
}
