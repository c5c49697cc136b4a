package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/haivivi/netbuf/pkg/buffer"
	"github.com/haivivi/netbuf/pkg/bufconn"
	"github.com/haivivi/netbuf/pkg/frame"
)

// Handler processes one decoded message. Replies are written to c.Out,
// usually through the connection's Framer, and flushed by the server once
// every readable message has been handled.
type Handler interface {
	Serve(ctx context.Context, c *bufconn.Conn, msg []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c *bufconn.Conn, msg []byte) error

func (f HandlerFunc) Serve(ctx context.Context, c *bufconn.Conn, msg []byte) error {
	return f(ctx, c, msg)
}

// Echo returns a Handler that writes every message back with f.
func Echo(f Framer) Handler {
	return HandlerFunc(func(_ context.Context, c *bufconn.Conn, msg []byte) error {
		return f.Encode(c.Out, msg)
	})
}

// Mode selects how a byte stream is split into messages.
type Mode string

const (
	ModeLine  Mode = "line"
	ModeFrame Mode = "frame"
)

// ParseMode parses "line" or "frame".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeLine, ModeFrame:
		return m, nil
	default:
		return "", fmt.Errorf("server: unknown mode %q", s)
	}
}

// Framer decodes messages from an input buffer and encodes replies into an
// output buffer.
type Framer interface {
	// Decode returns frame.ErrIncomplete when no complete message is
	// readable.
	Decode(b *buffer.Buffer) ([]byte, error)
	Encode(b *buffer.Buffer, msg []byte) error
}

// NewFramer returns the Framer for mode.
func NewFramer(mode Mode, line frame.LineCodec, length frame.LengthCodec) (Framer, error) {
	switch mode {
	case ModeLine, "":
		return lineFramer{line}, nil
	case ModeFrame:
		if err := length.Validate(); err != nil {
			return nil, err
		}
		return lengthFramer{length}, nil
	default:
		return nil, fmt.Errorf("server: unknown mode %q", mode)
	}
}

type lineFramer struct {
	codec frame.LineCodec
}

func (f lineFramer) Decode(b *buffer.Buffer) ([]byte, error) {
	line, err := f.codec.Next(b)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (f lineFramer) Encode(b *buffer.Buffer, msg []byte) error {
	f.codec.Append(b, string(msg))
	return nil
}

type lengthFramer struct {
	codec frame.LengthCodec
}

func (f lengthFramer) Decode(b *buffer.Buffer) ([]byte, error) { return f.codec.Next(b) }

func (f lengthFramer) Encode(b *buffer.Buffer, msg []byte) error { return f.codec.Append(b, msg) }
