package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
)

func dialHub(t *testing.T, hub *WebSocketHub) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.WebSocketHandler))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("Dial: %v", err)
	}
	return srv, conn
}

func waitForClients(t *testing.T, hub *WebSocketHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubTracksClientsAndBroadcasts(t *testing.T) {
	hub := NewWebSocketHub(arbor.NewLogger())
	srv, conn := dialHub(t, hub)
	defer hub.Close()
	defer srv.Close()
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.SendRunUpdate("run_started", map[string]string{"run_id": "r1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		// The heartbeat may interleave; wait for the run event
		if strings.Contains(string(msg), "run_started") {
			break
		}
	}
}

func TestHubCloseDropsClients(t *testing.T) {
	hub := NewWebSocketHub(arbor.NewLogger())
	srv, conn := dialHub(t, hub)
	defer srv.Close()
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.Close()
	hub.Close() // safe to call twice

	waitForClients(t, hub, 0)

	// Progress sends after shutdown must not block the caller
	sent := make(chan struct{})
	go func() {
		hub.SendRunUpdate("run_complete", nil)
		close(sent)
	}()
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("SendRunUpdate blocked after Close")
	}
}
