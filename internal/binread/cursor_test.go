package binread_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"reliquary/internal/binread"
)

func TestCursorReadsLittleEndian(t *testing.T) {
	c := binread.New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	b, err := c.ReadU8()
	if err != nil || b != 0x01 {
		t.Fatalf("ReadU8 = %#x, %v", b, err)
	}
	v16, err := c.ReadU16()
	if err != nil || v16 != 0x0302 {
		t.Fatalf("ReadU16 = %#x, %v", v16, err)
	}
	v32, err := c.ReadU32()
	if err != nil || v32 != 0x07060504 {
		t.Fatalf("ReadU32 = %#x, %v", v32, err)
	}
	if !c.EOF() {
		t.Fatalf("expected EOF at pos %d", c.Pos())
	}
}

func TestCursorShortReads(t *testing.T) {
	c := binread.New([]byte{0xAA, 0xBB})
	if _, err := c.ReadU32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if c.Pos() != 0 {
		t.Fatalf("failed read must not advance, pos = %d", c.Pos())
	}
}

func TestCursorSeekSkipPeek(t *testing.T) {
	c := binread.New([]byte("reliquary"))
	if err := c.Skip(4); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if got := c.Peek(3); !bytes.Equal(got, []byte("qua")) {
		t.Fatalf("Peek = %q", got)
	}
	if c.Pos() != 4 {
		t.Fatalf("Peek advanced cursor to %d", c.Pos())
	}
	if err := c.Seek(c.Len()); err != nil {
		t.Fatalf("Seek to end: %v", err)
	}
	if got := c.Peek(8); len(got) != 0 {
		t.Fatalf("Peek past end = %q", got)
	}
	if err := c.Seek(c.Len() + 1); err == nil {
		t.Fatal("expected error seeking past end")
	}
	if err := c.Skip(1); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Skip past end: %v", err)
	}
}

func TestCursorReadBytesSharesBuffer(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := binread.New(data)
	got, err := c.ReadBytes(4)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	data[0] = 9
	if got[0] != 9 {
		t.Fatal("ReadBytes must return a view of the buffer, not a copy")
	}
}
