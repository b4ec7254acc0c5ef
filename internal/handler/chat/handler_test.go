package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	kbmodel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	chatservice "github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/internal/service/kb"
	"github.com/zhouzirui/dinebot/backend/internal/service/session"
)

func setupRouter() *chi.Mux {
	store := kbmodel.NewMemoryStore(map[string]kbmodel.Collection{
		"Delhi": {kbmodel.CategoryFAQ: {{Question: "What are your opening hours?", Answer: "Noon to midnight."}}},
	})
	chatSvc := chatservice.NewService(session.NewStore(nil), kb.NewResponder(store, kb.WithSeed(1)), nil)
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r http.Handler, body any) (*httptest.ResponseRecorder, chatservice.Reply) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var reply chatservice.Reply
	if resp.Code == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			t.Fatalf("decode reply: %v", err)
		}
	}
	return resp, reply
}

func TestChatGeneratesSessionID(t *testing.T) {
	r := setupRouter()

	resp, reply := postChat(t, r, map[string]string{"message": "hi"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if reply.SessionID == "" || reply.State != "intent_detection" || reply.Response == "" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatFAQFlow(t *testing.T) {
	r := setupRouter()

	postChat(t, r, map[string]string{"message": "hi", "session_id": "s1"})
	_, reply := postChat(t, r, map[string]string{"message": "what are your opening hours in delhi?", "session_id": "s1"})
	if reply.State != "faq" || reply.Response != "Noon to midnight." {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatInvalidBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHistoryAndReset(t *testing.T) {
	r := setupRouter()
	postChat(t, r, map[string]string{"message": "hi", "session_id": "s1"})

	req := httptest.NewRequest(http.MethodGet, "/chat/s1/history", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var view historyView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if view.SessionID != "s1" || len(view.History) != 1 || view.History[0].User != "hi" {
		t.Fatalf("unexpected history %+v", view)
	}

	req = httptest.NewRequest(http.MethodDelete, "/chat/s1", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chat/s1/history", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after reset, got %d", resp.Code)
	}
}

func TestEmptyMessageGreetingAppearsInHistory(t *testing.T) {
	r := setupRouter()
	_, reply := postChat(t, r, map[string]string{"message": "", "session_id": "e1"})
	if reply.State != "greeting" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	req := httptest.NewRequest(http.MethodGet, "/chat/e1/history", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var view historyView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if view.State != "greeting" || len(view.History) != 1 {
		t.Fatalf("unexpected history %+v", view)
	}
	if turn := view.History[0]; turn.User != "" || turn.Bot != reply.Response {
		t.Fatalf("unexpected greeting turn %+v", turn)
	}
}
