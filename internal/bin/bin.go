// Package bin implements a bounds-checked cursor over a fixed byte region,
// used to parse and build the terms and dtmap file formats without ever
// reading or writing past the region the caller handed us.
package bin

import (
	"encoding/binary"
	"errors"
)

// ErrShortRegion is returned whenever an operation would read or write
// past the end of the cursor's region. It is the sole bounds check used
// by the terms/dtmap record parsers.
var ErrShortRegion = errors.New("bin: short region")

// Cursor reads and writes big-endian fixed-width fields against a fixed
// []byte region, tracking a current offset. Every accessor is bounds
// checked against the region's length; callers never need an explicit
// length check before calling Get*/Put*.
type Cursor struct {
	base []byte
	pos  int
}

// New wraps base in a Cursor positioned at offset 0.
func New(base []byte) *Cursor {
	return &Cursor{base: base}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the region length.
func (c *Cursor) Len() int { return len(c.base) }

// Remaining returns the number of bytes left between Pos and Len.
func (c *Cursor) Remaining() int { return len(c.base) - c.pos }

// Seek repositions the cursor to an absolute offset. It fails if off is
// negative or past the end of the region.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.base) {
		return ErrShortRegion
	}
	c.pos = off
	return nil
}

// Advance moves the cursor forward by n bytes. It fails if that would
// pass the end of the region, leaving the cursor unmoved.
func (c *Cursor) Advance(n int) error {
	if n < 0 || n > c.Remaining() {
		return ErrShortRegion
	}
	c.pos += n
	return nil
}

// Bytes returns a slice view of the next n bytes without advancing.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, ErrShortRegion
	}
	return c.base[c.pos : c.pos+n], nil
}

// FetchBytes returns a copy of the next n bytes and advances past them.
func (c *Cursor) FetchBytes(n int) ([]byte, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	c.pos += n
	return out, nil
}

// StoreBytes writes p at the current offset and advances past it.
func (c *Cursor) StoreBytes(p []byte) error {
	if len(p) > c.Remaining() {
		return ErrShortRegion
	}
	copy(c.base[c.pos:c.pos+len(p)], p)
	c.pos += len(p)
	return nil
}

// Zero writes n zero bytes at the current offset and advances past them.
func (c *Cursor) Zero(n int) error {
	if n < 0 || n > c.Remaining() {
		return ErrShortRegion
	}
	for i := 0; i < n; i++ {
		c.base[c.pos+i] = 0
	}
	c.pos += n
	return nil
}

// FetchU16 reads a big-endian uint16 at the current offset and advances.
func (c *Cursor) FetchU16() (uint16, error) {
	if 2 > c.Remaining() {
		return 0, ErrShortRegion
	}
	v := binary.BigEndian.Uint16(c.base[c.pos:])
	c.pos += 2
	return v, nil
}

// PutU16 writes a big-endian uint16 at the current offset and advances.
func (c *Cursor) PutU16(v uint16) error {
	if 2 > c.Remaining() {
		return ErrShortRegion
	}
	binary.BigEndian.PutUint16(c.base[c.pos:], v)
	c.pos += 2
	return nil
}

// FetchU32 reads a big-endian uint32 at the current offset and advances.
func (c *Cursor) FetchU32() (uint32, error) {
	if 4 > c.Remaining() {
		return 0, ErrShortRegion
	}
	v := binary.BigEndian.Uint32(c.base[c.pos:])
	c.pos += 4
	return v, nil
}

// PutU32 writes a big-endian uint32 at the current offset and advances.
func (c *Cursor) PutU32(v uint32) error {
	if 4 > c.Remaining() {
		return ErrShortRegion
	}
	binary.BigEndian.PutUint32(c.base[c.pos:], v)
	c.pos += 4
	return nil
}

// FetchU64 reads a big-endian uint64 at the current offset and advances.
func (c *Cursor) FetchU64() (uint64, error) {
	if 8 > c.Remaining() {
		return 0, ErrShortRegion
	}
	v := binary.BigEndian.Uint64(c.base[c.pos:])
	c.pos += 8
	return v, nil
}

// PutU64 writes a big-endian uint64 at the current offset and advances.
func (c *Cursor) PutU64(v uint64) error {
	if 8 > c.Remaining() {
		return ErrShortRegion
	}
	binary.BigEndian.PutUint64(c.base[c.pos:], v)
	c.pos += 8
	return nil
}

// AtU32 reads a big-endian uint32 at an absolute offset without moving
// the cursor. It is a plain, non-atomic read; the atomically-published
// data-length fields are read through mmapfile.LoadLen32/LoadLen64.
func AtU32(base []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(base) {
		return 0, ErrShortRegion
	}
	return binary.BigEndian.Uint32(base[off:]), nil
}

// AtU64 reads a big-endian uint64 at an absolute offset without moving
// the cursor.
func AtU64(base []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(base) {
		return 0, ErrShortRegion
	}
	return binary.BigEndian.Uint64(base[off:]), nil
}

// PutAtU32 writes a big-endian uint32 at an absolute offset.
func PutAtU32(base []byte, off int, v uint32) error {
	if off < 0 || off+4 > len(base) {
		return ErrShortRegion
	}
	binary.BigEndian.PutUint32(base[off:], v)
	return nil
}

// PutAtU64 writes a big-endian uint64 at an absolute offset.
func PutAtU64(base []byte, off int, v uint64) error {
	if off < 0 || off+8 > len(base) {
		return ErrShortRegion
	}
	binary.BigEndian.PutUint64(base[off:], v)
	return nil
}

// Align8 rounds n up to the next multiple of 8.
func Align8(n int) int {
	return (n + 7) &^ 7
}
