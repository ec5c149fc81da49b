package gcheap

import (
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// Segment owns one contiguous unmanaged buffer, bump-allocated, for a
// single generation. Non-Gen0 segments carry a card table and brick
// index (Gen0's are present but never populated by the write barrier,
// since nothing ever treats Gen0 as a remembered-set source).
type Segment struct {
	region     *rawmem.Region
	generation Generation
	allocPtr   int64 // next free offset; objects occupy [0, allocPtr)

	cards  *CardTable
	bricks *BrickIndex
}

// NewSegment reserves size bytes of unmanaged memory for generation g.
func NewSegment(g Generation, size int64, cardSize, brickSize int64) (*Segment, error) {
	r, err := rawmem.NewRegion(size)
	if err != nil {
		return nil, err
	}
	return &Segment{
		region:     r,
		generation: g,
		cards:      NewCardTable(size, cardSize),
		bricks:     NewBrickIndex(size, brickSize),
	}, nil
}

func (s *Segment) Generation() Generation   { return s.generation }
func (s *Segment) Base() rawmem.Address     { return s.region.Base() }
func (s *Segment) Size() int64              { return s.region.Size() }
func (s *Segment) AllocatedBytes() int64    { return s.allocPtr }
func (s *Segment) Region() *rawmem.Region   { return s.region }
func (s *Segment) Cards() *CardTable        { return s.cards }
func (s *Segment) Bricks() *BrickIndex      { return s.bricks }
func (s *Segment) Contains(a rawmem.Address) bool { return s.region.Contains(a) }

// End returns the address one past the end of the segment.
func (s *Segment) End() rawmem.Address {
	return s.region.Base().Add(s.region.Size())
}

// TryAllocate aligns n up to pointer size and bump-allocates it,
// returning the pre-advance segment-relative offset. ok is false
// (never a panic) if the segment has no room.
func (s *Segment) TryAllocate(n int64) (offset int64, ok bool) {
	n = alignUp(n, typelayout.PtrSize)
	if s.allocPtr+n > s.region.Size() {
		return 0, false
	}
	off := s.allocPtr
	s.allocPtr += n
	return off, true
}

// ResetNurseryLayout zeroes the buffer, resets the bump cursor, and
// clears the card table and brick index.
func (s *Segment) ResetNurseryLayout() {
	s.region.Zero()
	s.allocPtr = 0
	s.cards.ClearAll()
	s.bricks.ClearAll()
}

// Free releases the segment's unmanaged buffer.
func (s *Segment) Free() error {
	return s.region.Free()
}
