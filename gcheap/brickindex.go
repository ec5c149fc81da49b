package gcheap

import "github.com/haldane-systems/ephemeralgc/internal/rawmem"

// BrickIndex is a per-segment snapping table that records, for each
// brick, the last object start falling inside it, used to find a safe
// object boundary near an
// arbitrary address (e.g. the start of a dirty card range) without
// scanning the whole segment from offset 0.
type BrickIndex struct {
	brickSize int64
	entries   []int64 // segment-relative offset of last object start, or -1
}

// NewBrickIndex builds an empty (-1 everywhere) brick index for a
// segment of segSize bytes with granules of brickSize bytes.
func NewBrickIndex(segSize, brickSize int64) *BrickIndex {
	n := (segSize + brickSize - 1) / brickSize
	b := &BrickIndex{brickSize: brickSize, entries: make([]int64, n)}
	b.ClearAll()
	return b
}

func (b *BrickIndex) BrickSize() int64 { return b.brickSize }

// OnAllocation records that a new object starts at the segment-
// relative offset off, updating its enclosing brick if off is greater
// than the brick's current entry.
func (b *BrickIndex) OnAllocation(off int64) {
	i := off / b.brickSize
	if off > b.entries[i] {
		b.entries[i] = off
	}
}

// SnapToObjectStart returns the segment-relative offset of the last
// recorded object start <= off, walking left across bricks. Returns 0
// (the segment base) if no earlier object start is recorded, which is
// always a safe (if conservative) answer.
func (b *BrickIndex) SnapToObjectStart(off int64) int64 {
	i := off / b.brickSize
	for i >= 0 {
		if e := b.entries[i]; e >= 0 && e <= off {
			return e
		}
		i--
	}
	return 0
}

// SnapAddr is the rawmem.Address-typed convenience form of
// SnapToObjectStart, operating relative to segBase.
func (b *BrickIndex) SnapAddr(segBase rawmem.Address, a rawmem.Address) rawmem.Address {
	return segBase.Add(b.SnapToObjectStart(a.Sub(segBase)))
}

// ClearAll sets every entry to -1 (no object start known).
func (b *BrickIndex) ClearAll() {
	for i := range b.entries {
		b.entries[i] = -1
	}
}
