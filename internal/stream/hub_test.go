package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWs)
	ts := httptest.NewServer(mux)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	var connects, disconnects atomic.Int64
	hub := NewHub(WithClientHooks(
		func() { connects.Add(1) },
		func() { disconnects.Add(1) },
	))
	go hub.Run(context.Background())
	defer hub.Stop()

	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	// Registration races the first broadcast; give the hub a beat.
	waitFor(t, func() bool { return connects.Load() == 1 })

	hub.Broadcast(Message{Type: "snapshot", Payload: map[string]any{"phase": "mission/approach"}, Sender: "simulation"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("client read failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("broadcast is not the JSON envelope: %v", err)
	}
	if msg.Type != "snapshot" || msg.Sender != "simulation" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
}

func TestHub_DisconnectFiresHook(t *testing.T) {
	var connects, disconnects atomic.Int64
	hub := NewHub(WithClientHooks(
		func() { connects.Add(1) },
		func() { disconnects.Add(1) },
	))
	go hub.Run(context.Background())
	defer hub.Stop()

	conn, cleanup := dialTestHub(t, hub)
	waitFor(t, func() bool { return connects.Load() == 1 })

	conn.Close()
	waitFor(t, func() bool { return disconnects.Load() == 1 })
	cleanup()
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run(context.Background())

	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close after hub stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
