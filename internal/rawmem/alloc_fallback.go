//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package rawmem

import "fmt"

// NewRegion reserves size bytes from the Go heap on platforms without
// an anonymous-mmap syscall available through golang.org/x/sys/unix.
// The memory is still never interpreted as containing Go pointers by
// this package's callers (they keep it pinned via a live reference in
// the owning Segment), but it is not truly outside the runtime's heap
// the way the unix mmap path is.
func NewRegion(size int64) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("rawmem: invalid region size %d", size)
	}
	b := make([]byte, size)
	return &Region{base: Address(addrOf(b)), bytes: b}, nil
}

// Free drops the region's reference to its backing buffer. The
// backing array is reclaimed by the ordinary Go GC once unreferenced.
func (r *Region) Free() error {
	r.bytes = nil
	return nil
}
