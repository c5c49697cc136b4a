package bufconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Subprotocol is the WebSocket subprotocol offered by Dial and accepted by
// Listen.
const Subprotocol = "netbuf"

// Dial connects to addr and wraps the connection in a Conn.
//
// addr is either a bare host:port (TCP) or a URL with one of the schemes
// tcp://, tls://, ws:// or wss://. WebSocket URLs without a path connect to
// "/".
func Dial(ctx context.Context, addr string, opts Options) (*Conn, error) {
	c, err := dial(ctx, addr, opts.TLSConfig)
	if err != nil {
		return nil, err
	}
	return NewConn(c, opts), nil
}

func dial(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	if !strings.Contains(addr, "://") {
		return dialTCP(ctx, addr)
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("bufconn: parse address: %w", err)
	}
	if u.Port() == "" {
		return nil, fmt.Errorf("bufconn: address %q has no port", addr)
	}

	switch scheme := strings.ToLower(u.Scheme); scheme {
	case "tcp":
		return dialTCP(ctx, u.Host)
	case "tls":
		return dialTLS(ctx, u.Host, tlsConfig)
	case "ws", "wss":
		path := u.Path
		if path == "" {
			path = "/"
		}
		return dialWebSocket(ctx, scheme+"://"+u.Host+path, tlsConfig)
	default:
		return nil, fmt.Errorf("bufconn: unsupported scheme: %s", scheme)
	}
}

func dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func dialTLS(ctx context.Context, addr string, config *tls.Config) (net.Conn, error) {
	if config == nil {
		host, _, _ := net.SplitHostPort(addr)
		config = &tls.Config{ServerName: host}
	}
	d := tls.Dialer{Config: config}
	return d.DialContext(ctx, "tcp", addr)
}

func dialWebSocket(ctx context.Context, urlStr string, tlsConfig *tls.Config) (net.Conn, error) {
	dialer := websocket.Dialer{
		Subprotocols:    []string{Subprotocol},
		TLSClientConfig: tlsConfig,
	}
	ws, _, err := dialer.DialContext(ctx, urlStr, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}
