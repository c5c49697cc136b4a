package frame

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/netbuf/pkg/buffer"
)

// MsgpackCodec carries msgpack-encoded values in length-prefixed frames.
type MsgpackCodec struct {
	Length LengthCodec
}

// Encode serializes v into a fresh buffer and seals it with a length header.
// The returned buffer's readable region is one complete frame.
func (c MsgpackCodec) Encode(v any) (*buffer.Buffer, error) {
	b := buffer.NewWithPrepend(max(buffer.DefaultPrepend, c.Length.HeaderSize()), buffer.DefaultInitialSize)
	if err := msgpack.NewEncoder(b).Encode(v); err != nil {
		return nil, fmt.Errorf("frame: msgpack encode: %w", err)
	}
	if err := c.Length.Seal(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AppendTo encodes v as one frame at the end of b.
func (c MsgpackCodec) AppendTo(b *buffer.Buffer, v any) error {
	scratch, err := c.Encode(v)
	if err != nil {
		return err
	}
	b.Append(scratch.Peek())
	return nil
}

// Decode removes the first complete frame from b and unmarshals it into v.
// Errors from Next are returned unchanged.
func (c MsgpackCodec) Decode(b *buffer.Buffer, v any) error {
	payload, err := c.Length.Next(b)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("frame: msgpack decode: %w", err)
	}
	return nil
}
