package bufconn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/haivivi/netbuf/pkg/buffer"
)

// echoOnce accepts one connection and copies everything it reads back.
func echoOnce(t *testing.T, ln net.Listener) {
	t.Helper()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		io.Copy(c, c)
	}()
}

func roundTrip(t *testing.T, addr string, payload []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, addr, Options{InitialSize: 64})
	if err != nil {
		t.Fatalf("Dial(%s) error: %v", addr, err)
	}
	defer conn.Close()
	if conn.ID == "" {
		t.Fatal("connection has no ID")
	}
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	conn.Out.Append(payload)
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if conn.Out.ReadableBytes() != 0 {
		t.Fatalf("Out has %d bytes after Flush", conn.Out.ReadableBytes())
	}

	for conn.In.ReadableBytes() < len(payload) {
		if _, err := conn.Fill(); err != nil {
			t.Fatalf("Fill error after %d bytes: %v", conn.In.ReadableBytes(), err)
		}
	}
	if !bytes.Equal(conn.In.Peek(), payload) {
		t.Fatal("echoed payload mismatch")
	}
}

func TestConn_TCP(t *testing.T) {
	ln, err := Listen("tcp", "127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	defer ln.Close()
	echoOnce(t, ln)

	roundTrip(t, ln.Addr().String(), bytes.Repeat([]byte("tcp!"), 20_000))
}

func TestConn_TCPScheme(t *testing.T) {
	ln, err := Listen("", "127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	defer ln.Close()
	echoOnce(t, ln)

	roundTrip(t, "tcp://"+ln.Addr().String(), []byte("hello\r\n"))
}

func TestConn_WebSocket(t *testing.T) {
	ln, err := Listen("ws", "127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	defer ln.Close()
	echoOnce(t, ln)

	// Larger than one ReadChunk so a message spans several reads.
	roundTrip(t, "ws://"+ln.Addr().String()+"/echo", bytes.Repeat([]byte{0, 1, 2, 3}, 20_000))
}

func TestConn_WebSocketEOF(t *testing.T) {
	ln, err := Listen("ws", "127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		c.Write([]byte("bye"))
		c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, "ws://"+ln.Addr().String(), Options{})
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var fillErr error
	for fillErr == nil {
		_, fillErr = conn.Fill()
	}
	if fillErr != io.EOF {
		t.Fatalf("expected io.EOF, got %v", fillErr)
	}
	if string(conn.In.Peek()) != "bye" {
		t.Fatalf("In = %q", conn.In.Peek())
	}
}

func TestOptions(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewConn(client, Options{})
	if c.In.Prepend() != buffer.DefaultPrepend || c.In.WritableBytes() != buffer.DefaultInitialSize {
		t.Fatalf("default In: prepend %d, writable %d", c.In.Prepend(), c.In.WritableBytes())
	}

	c = NewConn(client, Options{Prepend: 16, InitialSize: 128})
	if c.Out.Prepend() != 16 || c.Out.WritableBytes() != 128 {
		t.Fatalf("Out: prepend %d, writable %d", c.Out.Prepend(), c.Out.WritableBytes())
	}
	if c.In == c.Out {
		t.Fatal("In and Out share a buffer")
	}
}

func TestDialErrors(t *testing.T) {
	ctx := context.Background()
	tests := []string{
		"udp://127.0.0.1:9",
		"ws://127.0.0.1",
	}
	for _, addr := range tests {
		if _, err := Dial(ctx, addr, Options{}); err == nil {
			t.Errorf("Dial(%q) succeeded", addr)
		}
	}
}

func TestListenErrors(t *testing.T) {
	for _, network := range []string{"tls", "wss", "quic"} {
		if _, err := Listen(network, "127.0.0.1:0", nil); err == nil {
			t.Errorf("Listen(%q) succeeded", network)
		}
	}
}

func TestWSListenerClose(t *testing.T) {
	ln, err := Listen("ws", "127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	ln.Close()
	if _, err := ln.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Accept after Close = %v, want net.ErrClosed", err)
	}
}
