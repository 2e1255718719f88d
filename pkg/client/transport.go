package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/matchwire-dev/matchwire/pkg/protocol"
)

// Transport carries whole frame blocks between the client and the broker.
// Send takes a serialized frame, terminator included; Receive blocks until a
// full frame's bytes are available and returns them, or an error on
// transport closure. Implementations must allow Send and Receive from
// different goroutines.
type Transport interface {
	Connect(ctx context.Context) error
	Send(frame []byte) error
	Receive() ([]byte, error)
	Close() error
}

// TCPTransport speaks the protocol over a raw TCP stream, with frames
// delimited by the terminator byte.
type TCPTransport struct {
	addr string

	mu   sync.Mutex // protects conn writes and reconnect
	conn net.Conn
	r    *bufio.Reader
}

// NewTCPTransport creates a transport for the given host:port address.
// Connect must be called before use.
func NewTCPTransport(addr string) *TCPTransport {
	return &TCPTransport{addr: addr}
}

// Connect dials the broker. Calling Connect on a connected transport
// replaces the previous connection.
func (t *TCPTransport) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", t.addr, err)
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.r = bufio.NewReader(conn)
	t.mu.Unlock()
	return nil
}

// Send writes one serialized frame to the stream.
func (t *TCPTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("client: send frame: %w", err)
	}
	return nil
}

// Receive blocks until one terminator-delimited frame block has been read.
// The returned block includes the terminator byte.
func (t *TCPTransport) Receive() ([]byte, error) {
	t.mu.Lock()
	r := t.r
	t.mu.Unlock()
	if r == nil {
		return nil, ErrNotConnected
	}
	block, err := r.ReadBytes(protocol.Terminator)
	if err != nil {
		return nil, fmt.Errorf("client: receive frame: %w", err)
	}
	return block, nil
}

// Close tears down the connection. Safe to call when not connected.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.r = nil
	return err
}

// WSTransport speaks the protocol over a WebSocket connection, one frame
// block per binary message. Brokers that expose the protocol over
// WebSocket (web frontends, proxied deployments) accept exactly the same
// frame bytes as the TCP stream.
type WSTransport struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex // protects conn writes and reconnect
	conn *websocket.Conn
}

// NewWSTransport creates a transport for the given ws:// or wss:// URL.
func NewWSTransport(url string) *WSTransport {
	return &WSTransport{url: url, dialer: websocket.DefaultDialer}
}

// Connect dials the broker endpoint.
func (t *WSTransport) Connect(ctx context.Context) error {
	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", t.url, err)
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.mu.Unlock()
	return nil
}

// Send writes one serialized frame as a single binary message.
func (t *WSTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("client: send frame: %w", err)
	}
	return nil
}

// Receive blocks until the next message and returns its payload.
func (t *WSTransport) Receive() ([]byte, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("client: receive frame: %w", err)
	}
	return data, nil
}

// Close tears down the connection. Safe to call when not connected.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
