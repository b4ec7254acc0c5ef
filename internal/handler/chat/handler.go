package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
	chatService "github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// Handler serves the chat endpoints.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/{sessionID}/history", h.handleHistory)
	r.Delete("/chat/{sessionID}", h.handleReset)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondInvalidBody(w)
		return
	}

	reply, err := h.chatSvc.HandleMessage(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		slog.Error("chat turn failed", "session_id", payload.SessionID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

type historyView struct {
	SessionID string            `json:"session_id"`
	State     string            `json:"state"`
	Context   map[string]string `json:"context"`
	StartTime time.Time         `json:"start_time"`
	History   []chat.Turn       `json:"history"`
}

func newHistoryView(sess chat.Session) historyView {
	view := historyView{
		SessionID: sess.ID,
		State:     string(sess.State),
		Context:   sess.Context,
		StartTime: sess.StartTime,
		History:   sess.History,
	}
	if view.History == nil {
		view.History = []chat.Turn{}
	}
	return view
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, newHistoryView(sess))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.Reset(r.Context(), sessionID); err != nil {
		respondSessionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	slog.Error("session lookup failed", "error", err)
	utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
}
