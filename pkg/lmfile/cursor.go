package lmfile

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a bounds-checked little-endian reader over an in-memory byte slice.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor positions a cursor at offset within data.
func NewCursor(data []byte, offset int) *Cursor {
	return &Cursor{data: data, pos: offset}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

// Uint16 reads the next 2-byte little-endian value.
func (c *Cursor) Uint16() (uint16, error) {
	if c.pos < 0 || c.Remaining() < 2 {
		return 0, fmt.Errorf("read u16 at offset %#x (%d bytes left): %w", c.pos, c.Remaining(), ErrTruncatedStream)
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}
