// Package server runs a line or length-prefixed message server on top of
// buffered connections.
//
// Each connection is served by one goroutine that reads into the
// connection's input buffer, decodes every complete message, passes it to the
// [Handler] and flushes the replies collected in the output buffer.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haivivi/netbuf/pkg/bufconn"
	"github.com/haivivi/netbuf/pkg/capture"
	"github.com/haivivi/netbuf/pkg/frame"
)

// DefaultShrinkThreshold is the buffer capacity above which an idle
// connection buffer is shrunk.
const DefaultShrinkThreshold = 64 * 1024

// ErrAlreadyRunning is returned by Serve when the server is already serving.
var ErrAlreadyRunning = errors.New("server: already running")

// Server serves messages from accepted connections.
type Server struct {
	// Mode selects line or frame splitting. Default is ModeLine.
	Mode Mode

	// Line configures ModeLine.
	Line frame.LineCodec

	// Length configures ModeFrame.
	Length frame.LengthCodec

	// IdleTimeout closes connections that send nothing for this long.
	// Zero disables the timeout.
	IdleTimeout time.Duration

	// Recorder, if set, captures every payload read and written.
	Recorder *capture.Recorder

	// Handler is called for each message. Default echoes messages back.
	Handler Handler

	// Options sizes the connection buffers.
	Options bufconn.Options

	// ShrinkThreshold is the capacity above which an empty connection
	// buffer is shrunk back. Default is DefaultShrinkThreshold.
	ShrinkThreshold int

	running atomic.Bool
	mu      sync.Mutex
	ln      net.Listener
	conns   map[*bufconn.Conn]struct{}
	wg      sync.WaitGroup
}

// Serve accepts connections from ln until ctx is done, Close is called or
// ln fails. It returns nil on a normal shutdown, after every connection
// goroutine has exited.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	framer, err := NewFramer(s.Mode, s.Line, s.Length)
	if err != nil {
		return err
	}
	handler := s.Handler
	if handler == nil {
		handler = Echo(framer)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.ln = ln
	s.conns = make(map[*bufconn.Conn]struct{})
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.shutdown(ln)
	}()

	slog.Info("server: listening", "addr", ln.Addr().String(), "mode", s.mode())
	for {
		nc, err := ln.Accept()
		if err != nil {
			cancel()
			s.shutdown(ln)
			s.wg.Wait()
			if errors.Is(err, net.ErrClosed) {
				slog.Info("server: stopped")
				return nil
			}
			return err
		}

		c := bufconn.NewConn(nc, s.Options)
		if !s.track(c) {
			c.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c, framer, handler)
		}()
	}
}

// Close stops the accept loop and closes all open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	return s.shutdown(ln)
}

func (s *Server) shutdown(ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ln == nil || s.ln != ln {
		return nil
	}
	err := ln.Close()
	s.ln = nil
	for c := range s.conns {
		c.Close()
	}
	s.conns = nil
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (s *Server) mode() Mode {
	if s.Mode == "" {
		return ModeLine
	}
	return s.Mode
}

func (s *Server) track(c *bufconn.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *bufconn.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) serveConn(ctx context.Context, c *bufconn.Conn, framer Framer, handler Handler) {
	defer c.Close()

	log := slog.With("conn", c.ID, "remote", c.RemoteAddr().String())
	log.Debug("server: connection opened")

	for {
		if s.IdleTimeout > 0 {
			c.SetReadDeadline(time.Now().Add(s.IdleTimeout))
		}
		n, readErr := c.Fill()
		if n > 0 {
			s.record(ctx, c, capture.Inbound, c.In.Peek()[c.In.ReadableBytes()-n:])
		}

		if err := s.dispatch(ctx, c, framer, handler); err != nil {
			log.Warn("server: closing connection", "error", err)
			return
		}
		if c.Out.ReadableBytes() > 0 {
			s.record(ctx, c, capture.Outbound, c.Out.Peek())
			if err := c.Flush(); err != nil {
				log.Debug("server: write failed", "error", err)
				return
			}
		}
		s.shrink(c)

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF):
			log.Debug("server: connection closed by peer")
			return
		case errors.Is(readErr, os.ErrDeadlineExceeded):
			log.Debug("server: idle timeout", "timeout", s.IdleTimeout)
			return
		default:
			log.Debug("server: read failed", "error", readErr)
			return
		}
	}
}

// dispatch hands every complete message in c.In to handler.
func (s *Server) dispatch(ctx context.Context, c *bufconn.Conn, framer Framer, handler Handler) error {
	for {
		msg, err := framer.Decode(c.In)
		if errors.Is(err, frame.ErrIncomplete) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handler.Serve(ctx, c, msg); err != nil {
			return err
		}
	}
}

func (s *Server) record(ctx context.Context, c *bufconn.Conn, dir capture.Direction, payload []byte) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Record(ctx, c.ID, dir, payload); err != nil {
		slog.Error("server: capture failed", "conn", c.ID, "dir", dir.String(), "error", err)
	}
}

// shrink releases buffer storage left over from a burst once the buffer has
// drained.
func (s *Server) shrink(c *bufconn.Conn) {
	threshold := s.ShrinkThreshold
	if threshold <= 0 {
		threshold = DefaultShrinkThreshold
	}
	if c.In.ReadableBytes() == 0 && c.In.InternalCapacity() > threshold {
		c.In.Shrink(0)
	}
	if c.Out.ReadableBytes() == 0 && c.Out.InternalCapacity() > threshold {
		c.Out.Shrink(0)
	}
}
