package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	kbmodel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	chatservice "github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/internal/service/kb"
	"github.com/zhouzirui/dinebot/backend/internal/service/session"
)

type replyMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	chatSvc := chatservice.NewService(session.NewStore(nil), kb.NewResponder(kbmodel.NewMemoryStore(nil)), nil)
	r := chi.NewRouter()
	New(chatSvc, nil).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) replyMessage {
	t.Helper()
	var msg replyMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestTextMessageGetsReply(t *testing.T) {
	conn := dial(t)

	if msg := read(t, conn); msg.Type != "connected" {
		t.Fatalf("expected connected, got %q", msg.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "hi"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := read(t, conn)
	if msg.Type != "reply" {
		t.Fatalf("expected reply, got %q", msg.Type)
	}
	var reply chatservice.Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.State != "intent_detection" || reply.SessionID != "s1" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestUnsupportedAndMismatchedMessages(t *testing.T) {
	conn := dial(t)
	read(t, conn)

	conn.WriteJSON(map[string]any{"type": "audio"})
	if msg := read(t, conn); msg.Type != "error" {
		t.Fatalf("expected error for unsupported type, got %q", msg.Type)
	}

	conn.WriteJSON(map[string]any{"type": "text", "sessionId": "other", "data": map[string]string{"text": "hi"}})
	if msg := read(t, conn); msg.Type != "error" {
		t.Fatalf("expected error for session mismatch, got %q", msg.Type)
	}

	conn.WriteJSON(map[string]any{"type": "ping"})
	if msg := read(t, conn); msg.Type != "pong" {
		t.Fatalf("expected pong, got %q", msg.Type)
	}
}
