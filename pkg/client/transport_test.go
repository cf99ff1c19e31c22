package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// feedServer is a minimal websocket endpoint: it sends one greeting frame,
// then echoes every command back prefixed with "echo:".
func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong","timestamp":"t0"}`)); err != nil {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, append([]byte("echo:"), data...)); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketDialer_RoundTrip(t *testing.T) {
	server := feedServer(t)
	defer server.Close()

	dial := WebSocketDialer(5*time.Second, 5*time.Second)
	conn, err := dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	greeting, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read greeting failed: %v", err)
	}
	if !strings.Contains(string(greeting), `"type":"pong"`) {
		t.Errorf("unexpected greeting: %s", greeting)
	}

	if err := conn.WriteMessage([]byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	echoed, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read echo failed: %v", err)
	}
	if string(echoed) != `echo:{"type":"ping"}` {
		t.Errorf("unexpected echo: %s", echoed)
	}
}

func TestWebSocketDialer_RefusedEndpoint(t *testing.T) {
	dial := WebSocketDialer(time.Second, time.Second)
	if _, err := dial(context.Background(), "ws://127.0.0.1:1/ws/city"); err == nil {
		t.Fatal("expected dial error for refused endpoint")
	}
}

func TestWebSocketTransport_CloseIdempotent(t *testing.T) {
	server := feedServer(t)
	defer server.Close()

	dial := WebSocketDialer(5*time.Second, 5*time.Second)
	conn, err := dial(context.Background(), wsURL(server))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("first close failed: %v", err)
	}
	// Second close must not panic or error.
	if err := conn.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestManager_AgainstRealWebSocket(t *testing.T) {
	server := feedServer(t)
	defer server.Close()

	m := NewManager(&Config{
		URL:               wsURL(server),
		BaseRetryDelay:    time.Millisecond,
		MaxRetryDelay:     8 * time.Millisecond,
		MaxRetries:        3,
		HeartbeatInterval: time.Hour,
	})
	defer m.Disconnect()

	frames := make(chan []byte, 8)
	m.OnMessage(func(data []byte) { frames <- data })

	m.Connect()

	select {
	case frame := <-frames:
		if !strings.Contains(string(frame), `"type":"pong"`) {
			t.Errorf("unexpected first frame: %s", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for greeting frame")
	}

	if err := m.Send([]byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case frame := <-frames:
		if string(frame) != `echo:{"type":"ping"}` {
			t.Errorf("unexpected echo: %s", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo frame")
	}
}
