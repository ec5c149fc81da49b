package gcheap

import "sync/atomic"

// CardRange is a half-open byte range within a segment covered by one
// dirty card.
type CardRange struct {
	Start, End int64
}

// CardTable is a per-segment dirty bytemap over fixed-size granules.
// Entries are atomic.Bool rather than plain bytes: the write barrier
// may dirty a foreign heap's card table from a goroutine that does not
// own that heap, and a plain byte write there would race.
type CardTable struct {
	cardSize int64
	segSize  int64
	bits     []atomic.Bool
}

// NewCardTable builds a clean card table for a segment of segSize
// bytes, with granules of at least 64 bytes each.
func NewCardTable(segSize, cardSize int64) *CardTable {
	if cardSize < 64 {
		cardSize = 64
	}
	n := (segSize + cardSize - 1) / cardSize
	return &CardTable{cardSize: cardSize, segSize: segSize, bits: make([]atomic.Bool, n)}
}

func (c *CardTable) CardSize() int64 { return c.cardSize }
func (c *CardTable) Len() int        { return len(c.bits) }

// MarkDirtyByOffset dirties the card covering segment-relative offset
// off. Safe to call concurrently with other dirtiers and with
// DirtyRanges/DirtyCount readers of other cards.
func (c *CardTable) MarkDirtyByOffset(off int64) {
	c.bits[off/c.cardSize].Store(true)
}

// IsDirty reports whether card index i is dirty.
func (c *CardTable) IsDirty(i int) bool {
	return c.bits[i].Load()
}

// DirtyCount returns the number of dirty cards.
func (c *CardTable) DirtyCount() int {
	n := 0
	for i := range c.bits {
		if c.bits[i].Load() {
			n++
		}
	}
	return n
}

// DirtyRanges yields the byte range covered by each dirty card, in
// index order.
func (c *CardTable) DirtyRanges() []CardRange {
	var ranges []CardRange
	for i := range c.bits {
		if !c.bits[i].Load() {
			continue
		}
		start := int64(i) * c.cardSize
		end := start + c.cardSize
		if end > c.segSize {
			end = c.segSize
		}
		ranges = append(ranges, CardRange{Start: start, End: end})
	}
	return ranges
}

// ClearAll resets the table to all-clean.
func (c *CardTable) ClearAll() {
	for i := range c.bits {
		c.bits[i].Store(false)
	}
}
