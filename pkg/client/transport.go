package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is one bidirectional message stream to the feed endpoint.
// Implementations carry frames only; they know nothing about their contents.
type Transport interface {
	// ReadMessage blocks until the next inbound frame or a transport error.
	ReadMessage() ([]byte, error)

	// WriteMessage transmits one frame.
	WriteMessage(data []byte) error

	// Close tears the stream down. Safe to call more than once.
	Close() error
}

// Dialer opens a Transport to the given endpoint. Tests substitute fakes.
type Dialer func(ctx context.Context, url string) (Transport, error)

// wsTransport adapts a gorilla/websocket connection to Transport.
// The feed speaks JSON text frames.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
	closed  sync.Once
}

// WebSocketDialer returns a Dialer that opens websocket connections with the
// given handshake and per-write timeouts.
func WebSocketDialer(handshakeTimeout, writeTimeout time.Duration) Dialer {
	return func(ctx context.Context, url string) (Transport, error) {
		dialer := &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		}
		conn, resp, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("client: dial %s: %w (http %d)", url, err, resp.StatusCode)
			}
			return nil, fmt.Errorf("client: dial %s: %w", url, err)
		}
		return &wsTransport{conn: conn, writeTimeout: writeTimeout}, nil
	}
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.writeTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	var err error
	t.closed.Do(func() {
		deadline := time.Now().Add(time.Second)
		t.writeMu.Lock()
		t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
