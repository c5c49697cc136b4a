package buffer

import (
	"unicode/utf8"
)

const (
	// DefaultPrepend is the number of bytes reserved in front of the
	// readable region of a new buffer.
	DefaultPrepend = 8

	// DefaultInitialSize is the writable capacity of a new buffer.
	DefaultInitialSize = 1024
)

// Buffer is a growable byte buffer used as the staging area for network I/O.
//
// The backing slice is split by two cursors into three contiguous regions:
//
//	+-------------------+------------------+------------------+
//	| prependable bytes |  readable bytes  |  writable bytes  |
//	|                   |     (CONTENT)    |                  |
//	+-------------------+------------------+------------------+
//	|                   |                  |                  |
//	0      <=      readIndex   <=    writeIndex    <=     len(buf)
//
// Incoming data is appended to the writable region and consumed from the
// readable region. The prependable region lets a caller write a header in
// front of content that is already in place, for example a length field that
// is only known after the payload has been serialized.
//
// When an append does not fit, the buffer first tries to slide the readable
// bytes back to the prepend margin and only grows the backing slice when
// sliding cannot free enough room.
//
// A Buffer is not safe for concurrent use. Slices returned by Peek and
// BeginWrite are only valid until the next call that mutates the buffer.
type Buffer struct {
	buf        []byte
	readIndex  int
	writeIndex int

	prepend int
	initial int
}

// New creates a Buffer with DefaultPrepend bytes of prepend margin and
// DefaultInitialSize bytes of writable capacity.
func New() *Buffer {
	return NewWithPrepend(DefaultPrepend, DefaultInitialSize)
}

// N creates a Buffer with the default prepend margin and initial bytes of
// writable capacity.
func N(initial int) *Buffer {
	return NewWithPrepend(DefaultPrepend, initial)
}

// NewWithPrepend creates a Buffer with the given prepend margin and initial
// writable capacity. Both must be non-negative.
func NewWithPrepend(prepend, initial int) *Buffer {
	if prepend < 0 || initial < 0 {
		violate(ErrInvalidRange, "negative size: prepend %d, initial %d", prepend, initial)
	}
	return &Buffer{
		buf:        make([]byte, prepend+initial),
		readIndex:  prepend,
		writeIndex: prepend,
		prepend:    prepend,
		initial:    initial,
	}
}

// ReadableBytes returns the number of bytes that can be consumed.
func (b *Buffer) ReadableBytes() int { return b.writeIndex - b.readIndex }

// WritableBytes returns the number of bytes that can be appended without
// compacting or growing.
func (b *Buffer) WritableBytes() int { return len(b.buf) - b.writeIndex }

// PrependableBytes returns the number of bytes in front of the readable
// region.
func (b *Buffer) PrependableBytes() int { return b.readIndex }

// ReaderIndex returns the absolute position of the first readable byte.
// Positions returned by the Find methods and accepted by RetrieveUntil are in
// the same coordinate space.
func (b *Buffer) ReaderIndex() int { return b.readIndex }

// WriterIndex returns the absolute position one past the last readable byte.
func (b *Buffer) WriterIndex() int { return b.writeIndex }

// Prepend returns the prepend margin this buffer was created with.
func (b *Buffer) Prepend() int { return b.prepend }

// InternalCapacity returns the capacity of the backing slice.
func (b *Buffer) InternalCapacity() int { return cap(b.buf) }

// Peek returns the readable region without consuming it.
//
// The returned slice aliases the buffer's storage and is invalidated by any
// call that appends, prepends, retrieves, compacts or grows.
func (b *Buffer) Peek() []byte {
	return b.buf[b.readIndex:b.writeIndex:b.writeIndex]
}

// BeginWrite returns the writable region. Bytes copied into it become
// readable after a matching HasWritten call.
func (b *Buffer) BeginWrite() []byte {
	return b.buf[b.writeIndex:]
}

// EnsureWritableBytes makes sure at least n bytes can be appended.
//
// If the writable region is already large enough this is a no-op. Otherwise
// the readable bytes are moved back to the prepend margin when that frees
// enough room, and only failing that is the backing slice grown to exactly
// writeIndex+n bytes.
func (b *Buffer) EnsureWritableBytes(n int) {
	if n < 0 {
		violate(ErrInvalidRange, "ensure writable: negative count %d", n)
	}
	if b.WritableBytes() < n {
		b.makeSpace(n)
	}
}

func (b *Buffer) makeSpace(n int) {
	if b.readIndex > b.prepend && b.WritableBytes()+b.PrependableBytes() >= b.prepend+n {
		readable := b.ReadableBytes()
		copy(b.buf[b.prepend:], b.buf[b.readIndex:b.writeIndex])
		b.readIndex = b.prepend
		b.writeIndex = b.prepend + readable
		return
	}

	grown := make([]byte, b.writeIndex+n)
	copy(grown, b.buf[:b.writeIndex])
	b.buf = grown
}

// HasWritten marks n bytes of the writable region as readable. It is used
// after copying data into the slice returned by BeginWrite.
func (b *Buffer) HasWritten(n int) {
	if n < 0 {
		violate(ErrInvalidRange, "has written: negative count %d", n)
	}
	if n > b.WritableBytes() {
		violate(ErrInsufficientWritable, "has written %d bytes, %d writable", n, b.WritableBytes())
	}
	b.writeIndex += n
}

// Unwrite takes back the last n readable bytes.
func (b *Buffer) Unwrite(n int) {
	b.checkReadable("unwrite", n)
	b.writeIndex -= n
}

// Append copies p to the end of the readable region, making room first.
func (b *Buffer) Append(p []byte) {
	b.EnsureWritableBytes(len(p))
	copy(b.buf[b.writeIndex:], p)
	b.HasWritten(len(p))
}

// AppendString appends the UTF-8 bytes of s.
func (b *Buffer) AppendString(s string) {
	b.EnsureWritableBytes(len(s))
	copy(b.buf[b.writeIndex:], s)
	b.HasWritten(len(s))
}

// Retrieve consumes n readable bytes. Consuming everything that is readable
// resets both cursors to the prepend margin, the same as RetrieveAll.
func (b *Buffer) Retrieve(n int) {
	b.checkReadable("retrieve", n)
	if n < b.ReadableBytes() {
		b.readIndex += n
		return
	}
	b.RetrieveAll()
}

// RetrieveAll discards all readable bytes and resets both cursors to the
// prepend margin.
func (b *Buffer) RetrieveAll() {
	b.readIndex = b.prepend
	b.writeIndex = b.prepend
}

// RetrieveUntil consumes the readable bytes in front of the absolute position
// end, as returned by FindCRLF or FindEOL.
func (b *Buffer) RetrieveUntil(end int) {
	b.checkPosition("retrieve until", end)
	b.Retrieve(end - b.readIndex)
}

// RetrieveAsBytes consumes n readable bytes and returns a copy of them.
func (b *Buffer) RetrieveAsBytes(n int) []byte {
	b.checkReadable("retrieve as bytes", n)
	p := make([]byte, n)
	copy(p, b.buf[b.readIndex:])
	b.Retrieve(n)
	return p
}

// RetrieveAsString consumes n readable bytes and returns them as a string.
// If the bytes are not valid UTF-8 it returns ErrInvalidUTF8 and consumes
// nothing.
func (b *Buffer) RetrieveAsString(n int) (string, error) {
	b.checkReadable("retrieve as string", n)
	p := b.buf[b.readIndex : b.readIndex+n]
	if !utf8.Valid(p) {
		return "", errorf(ErrInvalidUTF8, "%d bytes at reader index %d", n, b.readIndex)
	}
	s := string(p)
	b.Retrieve(n)
	return s, nil
}

// RetrieveAllAsString consumes the whole readable region as a string.
func (b *Buffer) RetrieveAllAsString() (string, error) {
	return b.RetrieveAsString(b.ReadableBytes())
}

// Swap exchanges the contents and configuration of b and other.
func (b *Buffer) Swap(other *Buffer) {
	*b, *other = *other, *b
}

// Shrink releases storage accumulated by earlier growth.
//
// The readable bytes are copied into a fresh buffer with the same prepend
// margin whose writable capacity is the larger of the buffer's initial size
// and ReadableBytes()+reserve; the fresh buffer then replaces b.
func (b *Buffer) Shrink(reserve int) {
	if reserve < 0 {
		violate(ErrInvalidRange, "shrink: negative reserve %d", reserve)
	}
	other := NewWithPrepend(b.prepend, b.initial)
	other.EnsureWritableBytes(b.ReadableBytes() + reserve)
	other.Append(b.Peek())
	b.Swap(other)
}

func (b *Buffer) checkReadable(op string, n int) {
	if n < 0 {
		violate(ErrInvalidRange, "%s: negative count %d", op, n)
	}
	if n > b.ReadableBytes() {
		violate(ErrInsufficientReadable, "%s needs %d bytes, %d readable", op, n, b.ReadableBytes())
	}
}

// checkPosition requires readIndex <= pos <= writeIndex.
func (b *Buffer) checkPosition(op string, pos int) {
	if pos < b.readIndex || pos > b.writeIndex {
		violate(ErrInvalidRange, "%s: position %d outside [%d, %d]", op, pos, b.readIndex, b.writeIndex)
	}
}
