package bufconn

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Listen creates a listener for the given network and address.
//
// Network can be:
//   - "tcp" (or "") for plain TCP
//   - "tls" for TLS
//   - "ws" for WebSocket
//   - "wss" for WebSocket over TLS
//
// tls and wss require tlsConfig. WebSocket listeners accept upgrades on any
// path.
func Listen(network, addr string, tlsConfig *tls.Config) (net.Listener, error) {
	switch network = strings.ToLower(network); network {
	case "tcp", "":
		return net.Listen("tcp", addr)
	case "tls":
		if tlsConfig == nil {
			return nil, fmt.Errorf("bufconn: tls config required for tls listener")
		}
		return tls.Listen("tcp", addr, tlsConfig)
	case "ws":
		return newWSListener(addr, nil)
	case "wss":
		if tlsConfig == nil {
			return nil, fmt.Errorf("bufconn: tls config required for wss listener")
		}
		return newWSListener(addr, tlsConfig)
	default:
		return nil, fmt.Errorf("bufconn: unsupported network: %s", network)
	}
}

// wsListener accepts WebSocket upgrades and hands them out as net.Conn.
type wsListener struct {
	ln        net.Listener
	connCh    chan net.Conn
	errCh     chan error
	closeOnce sync.Once
	closeCh   chan struct{}
	server    *http.Server
	upgrader  websocket.Upgrader
}

func newWSListener(addr string, tlsConfig *tls.Config) (*wsListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}

	l := &wsListener{
		ln:      ln,
		connCh:  make(chan net.Conn, 64),
		errCh:   make(chan error, 1),
		closeCh: make(chan struct{}),
		upgrader: websocket.Upgrader{
			Subprotocols: []string{Subprotocol},
			CheckOrigin:  func(r *http.Request) bool { return true },
		},
	}
	l.server = &http.Server{Handler: http.HandlerFunc(l.handleWS)}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case l.errCh <- err:
			default:
			}
		}
	}()
	return l, nil
}

func (l *wsListener) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("bufconn: websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := &wsConn{ws: ws}
	select {
	case l.connCh <- conn:
	case <-l.closeCh:
		conn.Close()
	}
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case err := <-l.errCh:
		return nil, err
	case <-l.closeCh:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closeCh)
		err = l.server.Close()
	})
	return err
}

func (l *wsListener) Addr() net.Addr {
	return l.ln.Addr()
}
