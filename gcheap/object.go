package gcheap

import (
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// HeaderSize is the fixed [syncBlock(8)][typeId(8)] object header.
const HeaderSize = 16

// alignUp rounds n up to the next multiple of align (align must be a
// power of two; PtrSize always is).
func alignUp(n, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}

// ObjectTotalSize returns the header-plus-payload size of an
// allocation of td, rounded up to pointer size.
func ObjectTotalSize(td *typelayout.TypeDesc) int64 {
	return alignUp(HeaderSize+td.Size, typelayout.PtrSize)
}

// WriteHeader zero-initializes an object's header except for its
// typeId.
func WriteHeader(r *rawmem.Region, objOff int64, typeId uint64) {
	r.WriteU64(objOff, 0) // syncBlock
	r.WriteU64(objOff+8, typeId)
}

// ReadTypeID reads the typeId out of an object header.
func ReadTypeID(r *rawmem.Region, objOff int64) uint64 {
	return r.ReadU64(objOff + 8)
}

// ForEachRefField calls visit with baseOff plus the payload-relative
// byte offset of every reference-typed field reachable from td,
// including fields nested inside struct-typed fields.
func ForEachRefField(td *typelayout.TypeDesc, baseOff int64, visit func(fieldOff int64)) {
	for i := range td.Fields {
		f := &td.Fields[i]
		switch f.Kind {
		case typelayout.KindRef:
			visit(baseOff + f.Offset)
		case typelayout.KindStruct:
			ForEachRefField(f.Nested, baseOff+f.Offset, visit)
		}
	}
}
