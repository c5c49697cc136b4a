package frame

import (
	"fmt"
	"math"

	"github.com/haivivi/netbuf/pkg/buffer"
)

// DefaultWidth is the header width used when LengthCodec.Width is zero.
const DefaultWidth = 4

// LengthCodec frames payloads with a big-endian unsigned length header.
type LengthCodec struct {
	// Width is the header size in bytes: 1, 2, 4 or 8. Zero means
	// DefaultWidth.
	Width int

	// MaxSize limits the payload length. Zero means no limit beyond what
	// the header can express and what fits in an int. Set it when decoding
	// from untrusted peers: without it a single 8-byte header can make the
	// reader buffer without bound.
	MaxSize int
}

// HeaderSize returns the number of header bytes in front of every payload.
func (c LengthCodec) HeaderSize() int {
	if c.Width == 0 {
		return DefaultWidth
	}
	return c.Width
}

// Validate reports whether the codec configuration is usable.
func (c LengthCodec) Validate() error {
	switch c.HeaderSize() {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWidth, c.Width)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("frame: negative max size %d", c.MaxSize)
	}
	return nil
}

func (c LengthCodec) check(n int) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.MaxSize > 0 && n > c.MaxSize {
		return &TooLargeError{Size: uint64(n), Limit: c.MaxSize}
	}
	if w := c.HeaderSize(); w < 8 && uint64(n) >= 1<<(8*w) {
		return fmt.Errorf("%w: %d bytes in a %d-byte header", ErrHeaderOverflow, n, w)
	}
	return nil
}

// Seal prepends the length of b's readable region as the frame header. The
// payload is serialized first and the header written afterwards into the
// prepend margin, so no bytes are moved.
func (c LengthCodec) Seal(b *buffer.Buffer) error {
	n := b.ReadableBytes()
	if err := c.check(n); err != nil {
		return err
	}
	if b.PrependableBytes() < c.HeaderSize() {
		return fmt.Errorf("%w: %d bytes prependable, header needs %d",
			ErrNoHeadroom, b.PrependableBytes(), c.HeaderSize())
	}
	switch c.HeaderSize() {
	case 1:
		b.PrependUint8(uint8(n))
	case 2:
		b.PrependUint16(uint16(n))
	case 4:
		b.PrependUint32(uint32(n))
	default:
		b.PrependUint64(uint64(n))
	}
	return nil
}

// Append writes a header and payload to the end of b.
func (c LengthCodec) Append(b *buffer.Buffer, payload []byte) error {
	n := len(payload)
	if err := c.check(n); err != nil {
		return err
	}
	b.EnsureWritableBytes(c.HeaderSize() + n)
	switch c.HeaderSize() {
	case 1:
		b.AppendUint8(uint8(n))
	case 2:
		b.AppendUint16(uint16(n))
	case 4:
		b.AppendUint32(uint32(n))
	default:
		b.AppendUint64(uint64(n))
	}
	b.Append(payload)
	return nil
}

func (c LengthCodec) peekLength(b *buffer.Buffer) uint64 {
	switch c.HeaderSize() {
	case 1:
		return uint64(b.PeekUint8())
	case 2:
		return uint64(b.PeekUint16())
	case 4:
		return uint64(b.PeekUint32())
	default:
		return b.PeekUint64()
	}
}

// Next removes the first complete frame from b and returns a copy of its
// payload.
//
// It returns ErrIncomplete, leaving b untouched, when the header or payload
// has not fully arrived, and a *TooLargeError as soon as the header announces
// more than MaxSize bytes.
func (c LengthCodec) Next(b *buffer.Buffer) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w := c.HeaderSize()
	if b.ReadableBytes() < w {
		return nil, ErrIncomplete
	}
	n := c.peekLength(b)
	if c.MaxSize > 0 && n > uint64(c.MaxSize) {
		return nil, &TooLargeError{Size: n, Limit: c.MaxSize}
	}
	if n > uint64(math.MaxInt-w) {
		return nil, &TooLargeError{Size: n, Limit: math.MaxInt - w}
	}
	if uint64(b.ReadableBytes()-w) < n {
		return nil, ErrIncomplete
	}
	b.Retrieve(w)
	return b.RetrieveAsBytes(int(n)), nil
}
