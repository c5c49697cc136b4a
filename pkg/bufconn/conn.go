// Package bufconn pairs network connections with input and output buffers.
//
// A [Conn] owns two [buffer.Buffer] values: In accumulates bytes read from
// the peer until a decoder can take whole messages out of it, and Out
// collects replies until they are flushed. [Dial] and [Listen] produce
// connections over TCP, TLS, WebSocket and WebSocket over TLS.
package bufconn

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/haivivi/netbuf/pkg/buffer"
)

// Options sizes the buffers of a Conn.
type Options struct {
	// Prepend is the prepend margin of both buffers.
	// Default is buffer.DefaultPrepend.
	Prepend int

	// InitialSize is the initial writable capacity of both buffers.
	// Default is buffer.DefaultInitialSize.
	InitialSize int

	// TLSConfig is used by the tls and wss transports.
	TLSConfig *tls.Config
}

func (o Options) newBuffer() *buffer.Buffer {
	prepend, initial := o.Prepend, o.InitialSize
	if prepend <= 0 {
		prepend = buffer.DefaultPrepend
	}
	if initial <= 0 {
		initial = buffer.DefaultInitialSize
	}
	return buffer.NewWithPrepend(prepend, initial)
}

// Conn is a net.Conn with an input and an output buffer.
//
// The buffers are not synchronized; a Conn is driven by one goroutine.
type Conn struct {
	net.Conn

	// ID identifies the connection in logs and captures.
	ID string

	In  *buffer.Buffer
	Out *buffer.Buffer
}

// NewConn wraps c.
func NewConn(c net.Conn, opts Options) *Conn {
	return &Conn{
		Conn: c,
		ID:   uuid.New().String(),
		In:   opts.newBuffer(),
		Out:  opts.newBuffer(),
	}
}

// Fill performs one read from the connection into In and returns the number
// of bytes read. io.EOF is returned unwrapped when the peer has closed.
func (c *Conn) Fill() (int, error) {
	return c.In.ReadChunk(c.Conn)
}

// Flush writes everything in Out to the connection.
func (c *Conn) Flush() error {
	for c.Out.ReadableBytes() > 0 {
		if _, err := c.Out.WriteTo(c.Conn); err != nil {
			return fmt.Errorf("bufconn: flush %s: %w", c.ID, err)
		}
	}
	return nil
}
