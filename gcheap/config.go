package gcheap

// Config carries the tunables a Runtime is built from: segment sizes,
// card and brick granularity, TLH slab size, and heap count. A value
// is constructed once and passed to every heap it creates, rather than
// living as package-level statics that every heap would implicitly
// share.
type Config struct {
	Gen0Size             int64
	Gen1Size             int64
	Gen2Size             int64
	LohSize              int64
	LargeObjectThreshold int64
	CardSizeBytes        int64
	BrickSizeBytes       int64
	TlhSlabBytes         int64
	HeapCount            int
}

// DefaultConfig returns reasonable per-heap defaults for a single-heap
// runtime.
func DefaultConfig() Config {
	return Config{
		Gen0Size:             1 << 20, // 1 MB
		Gen1Size:             1 << 20, // 1 MB
		Gen2Size:             2 << 20, // 2 MB
		LohSize:              2 << 20, // 2 MB
		LargeObjectThreshold: 85_000,
		CardSizeBytes:        256,
		BrickSizeBytes:       2048,
		TlhSlabBytes:         32 << 10, // 32 KiB
		HeapCount:            1,
	}
}

// Validate reports a BadArgument-flavored error for nonsensical config.
func (c Config) Validate() error {
	if c.CardSizeBytes < 64 {
		return badArgumentf("cardSizeBytes must be >= 64, got %d", c.CardSizeBytes)
	}
	if c.Gen0Size <= 0 || c.Gen1Size <= 0 || c.Gen2Size <= 0 || c.LohSize <= 0 {
		return badArgumentf("all segment sizes must be positive")
	}
	if c.BrickSizeBytes <= 0 || c.TlhSlabBytes <= 0 {
		return badArgumentf("brickSizeBytes and tlhSlabBytes must be positive")
	}
	if c.HeapCount <= 0 {
		return badArgumentf("heapCount must be positive")
	}
	return nil
}
