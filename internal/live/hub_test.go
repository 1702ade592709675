package live

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial hub: %v", err)
	}
	return conn
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d subscribers, got %d", want, hub.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer server.Close()

	conn := dialHub(t, server)
	defer conn.Close()
	waitForCount(t, hub, 1)

	payload := []byte(`[{"symbol":"btcusdt"}]`)
	hub.Broadcast(payload)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected payload %s, got %s", payload, got)
	}
}

func TestHubRemovesClosedSubscribers(t *testing.T) {
	hub := NewHub(testLogger())
	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer server.Close()

	conn := dialHub(t, server)
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)

	// Broadcasting to an empty hub is a no-op, not a panic.
	hub.Broadcast([]byte("{}"))
}

func TestBroadcastDropsDeadSubscriber(t *testing.T) {
	hub := NewHub(testLogger())

	// Register the server-side connection without the read drain so only
	// Broadcast can notice the dead socket.
	upgraded := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		hub.mu.Lock()
		hub.conns[conn] = struct{}{}
		hub.mu.Unlock()
		upgraded <- conn
	}))
	defer server.Close()

	client := dialHub(t, server)
	defer client.Close()

	conn := <-upgraded
	if hub.Count() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", hub.Count())
	}

	// Kill the underlying socket; setting the write deadline fails on a
	// closed connection, which must evict the subscriber.
	conn.Close()

	hub.Broadcast([]byte("{}"))
	if hub.Count() != 0 {
		t.Errorf("Expected dead subscriber to be dropped, got %d", hub.Count())
	}
}
