package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aidra-health/aidra/pkg/Logger"
)

var testUpgrader = websocket.Upgrader{}

// sessionPair upgrades a server-side connection into a ClientSession and
// returns the matching client-side connection.
func sessionPair(t *testing.T) (*ClientSession, *websocket.Conn, func()) {
	t.Helper()

	ready := make(chan *ClientSession, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		s := NewClientSession(uuid.New(), conn, Logger.Nop())
		ready <- s
		// Keep the handler alive until the test finishes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("Dial failed: %v", err)
	}

	session := <-ready
	cleanup := func() {
		session.Close()
		client.Close()
		srv.Close()
	}
	return session, client, cleanup
}

func TestClientSessionSend(t *testing.T) {
	session, client, cleanup := sessionPair(t)
	defer cleanup()

	if err := session.Send(MessageTypeNotice, NoticeMessage{Message: "voice restored"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	var msg WSMessage
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("Client read failed: %v", err)
	}
	if msg.Type != MessageTypeNotice {
		t.Errorf("Expected notice frame, got %s", msg.Type)
	}
	if msg.SessionID != session.ID.String() {
		t.Errorf("Expected session id on the frame, got %q", msg.SessionID)
	}

	var notice NoticeMessage
	if err := json.Unmarshal(msg.Data, &notice); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if notice.Message != "voice restored" {
		t.Errorf("Expected notice payload, got %q", notice.Message)
	}
}

func TestClientSessionAudioRelay(t *testing.T) {
	session, client, cleanup := sessionPair(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.RelayAudio(ctx)

	session.EnqueueAudio([]byte{0x10, 0x20, 0x30})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("Client read failed: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("Expected binary frame for audio, got type %d", msgType)
	}
	if len(data) != 3 || data[0] != 0x10 {
		t.Errorf("Unexpected audio payload: %v", data)
	}
}

func TestClientSessionCloseIdempotent(t *testing.T) {
	session, _, cleanup := sessionPair(t)
	defer cleanup()

	session.Close()
	session.Close() // second close is safe

	if err := session.Send(MessageTypeNotice, NoticeMessage{Message: "late"}); err == nil {
		t.Error("Expected send after close to fail")
	}
}

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry(Logger.Nop())
	defer registry.Shutdown()

	session, _, cleanup := sessionPair(t)
	defer cleanup()

	registry.Register(session)
	if registry.Count() != 1 {
		t.Errorf("Expected one registered session, got %d", registry.Count())
	}

	registry.Unregister(session.ID)
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got %d", registry.Count())
	}
}

func TestRegistryShutdownClosesSessions(t *testing.T) {
	registry := NewRegistry(Logger.Nop())

	session, _, cleanup := sessionPair(t)
	defer cleanup()
	registry.Register(session)

	registry.Shutdown()

	if registry.Count() != 0 {
		t.Errorf("Expected empty registry after shutdown, got %d", registry.Count())
	}
	if err := session.Send(MessageTypeNotice, NoticeMessage{Message: "late"}); err == nil {
		t.Error("Expected session to be closed by shutdown")
	}
}
