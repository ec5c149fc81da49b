// Package rawmem models a small slice of unmanaged address space: a set
// of byte buffers outside the Go runtime's own garbage-collected heap,
// addressed by absolute Address values, read and written a field at a
// time. It is the substrate the collector's segments are carved from.
package rawmem

import "fmt"

// Address is an absolute address in unmanaged memory. The zero Address
// is the null reference; it is never a valid object address.
type Address uint64

// Add returns the address n bytes past a.
func (a Address) Add(n int64) Address {
	return Address(int64(a) + n)
}

// Sub returns the number of bytes from b to a (a - b).
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}
