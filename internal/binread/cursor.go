// Package binread provides a sequential little-endian cursor over an
// in-memory buffer. Every binary container decoder in this module reads
// through it.
package binread

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cursor reads little-endian values from a byte slice while tracking the
// current position. It never copies the underlying buffer; ReadBytes and
// Peek return subslices that remain valid for the buffer's lifetime.
type Cursor struct {
	data []byte
	pos  int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos reports the current offset from the start of the buffer.
func (c *Cursor) Pos() int { return c.pos }

// Len reports the total buffer length.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// EOF reports whether the cursor is at or past the end of the buffer.
func (c *Cursor) EOF() bool { return c.pos >= len(c.data) }

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		return fmt.Errorf("seek to %d outside buffer of %d bytes", offset, len(c.data))
	}
	c.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return io.ErrUnexpectedEOF
	}
	c.pos += n
	return nil
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8() (byte, error) {
	if c.Remaining() < 1 {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadBytes returns the next n bytes and advances past them.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing. If fewer than n bytes
// remain it returns what is left.
func (c *Cursor) Peek(n int) []byte {
	if n > c.Remaining() {
		n = c.Remaining()
	}
	return c.data[c.pos : c.pos+n]
}
