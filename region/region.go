// Package region implements the byte region abstraction of §4.6: a typed,
// length-checked slice over a borrowed byte buffer, with slicing, copying,
// and searching operations. A Region owns nothing beyond the borrow of its
// backing array (§3 "Ownership").
package region

import (
	"bytes"

	bare "github.com/barewire/barewire"
)

// Region is a bounded view over a borrowed byte buffer: (data, start, len).
type Region struct {
	data  []byte
	start int
	len   int
}

// New wraps the whole of data as a Region.
func New(data []byte) *Region {
	return &Region{data: data, start: 0, len: len(data)}
}

// Len returns the region's length in bytes.
func (r *Region) Len() int { return r.len }

// Bytes returns the region's backing bytes. Mutating the returned slice
// mutates the region in place; callers needing an independent copy should
// use Slice followed by an explicit copy.
func (r *Region) Bytes() []byte { return r.data[r.start : r.start+r.len] }

// Slice returns a sub-region [off, off+length) with bounds checking.
func (r *Region) Slice(off, length int) (*Region, error) {
	if off < 0 || length < 0 || off+length > r.len {
		return nil, bare.NewError(bare.OutOfBounds, "slice(%d, %d) exceeds region length %d", off, length, r.len)
	}
	return &Region{data: r.data, start: r.start + off, len: length}, nil
}

// Copy copies n bytes from src[srcOff:] into dst[dstOff:], bounds-checking
// both regions.
func Copy(dst *Region, dstOff int, src *Region, srcOff int, n int) error {
	if dstOff < 0 || n < 0 || dstOff+n > dst.len {
		return bare.NewError(bare.OutOfBounds, "copy destination [%d,%d) exceeds region length %d", dstOff, dstOff+n, dst.len)
	}
	if srcOff < 0 || srcOff+n > src.len {
		return bare.NewError(bare.OutOfBounds, "copy source [%d,%d) exceeds region length %d", srcOff, srcOff+n, src.len)
	}
	copy(dst.data[dst.start+dstOff:dst.start+dstOff+n], src.data[src.start+srcOff:src.start+srcOff+n])
	return nil
}

// Fill byte-fills the entire region with v.
func (r *Region) Fill(v byte) {
	b := r.Bytes()
	for i := range b {
		b[i] = v
	}
}

// Equal reports whether a and b hold identical content (not identical
// backing arrays).
func Equal(a, b *Region) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Find returns the offset of the first occurrence of pattern within r, or
// -1 if absent. A naive scan is sufficient: §4.6 requires only correctness,
// not a particular substring-search algorithm.
func (r *Region) Find(pattern []byte) int {
	return bytes.Index(r.Bytes(), pattern)
}

// Resize allocates a new region of size n, copies min(old, n) bytes from r,
// and returns it. r is left independent and unaffected.
func (r *Region) Resize(n int) (*Region, error) {
	if n < 0 {
		return nil, bare.NewError(bare.InvalidValue, "resize length %d must be >= 0", n)
	}
	buf := make([]byte, n)
	copy(buf, r.Bytes())
	return New(buf), nil
}

// Split divides r at off into (r[0:off), r[off:len)).
func (r *Region) Split(off int) (*Region, *Region, error) {
	left, err := r.Slice(0, off)
	if err != nil {
		return nil, nil, err
	}
	right, err := r.Slice(off, r.len-off)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Merge allocates a fresh region of size a.Len()+b.Len() holding a's bytes
// followed by b's.
func Merge(a, b *Region) *Region {
	buf := make([]byte, a.Len()+b.Len())
	copy(buf, a.Bytes())
	copy(buf[a.Len():], b.Bytes())
	return New(buf)
}
