//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package rawmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NewRegion reserves size bytes of genuinely unmanaged memory via an
// anonymous mmap, so the segment it backs is outside the Go runtime's
// own heap and never scanned by it. This is the "portable fallback"
// allocator; a NUMA-aware one is out of scope.
func NewRegion(size int64) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("rawmem: invalid region size %d", size)
	}
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("rawmem: mmap %d bytes: %w", size, err)
	}
	return &Region{base: Address(addrOf(b)), bytes: b}, nil
}

// Free releases the region's backing mapping. The region must not be
// used after Free returns.
func (r *Region) Free() error {
	if r.bytes == nil {
		return nil
	}
	err := unix.Munmap(r.bytes)
	r.bytes = nil
	if err != nil {
		return fmt.Errorf("rawmem: munmap: %w", err)
	}
	return nil
}
