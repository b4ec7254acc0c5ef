package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/internal/textutil"
	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// chunkTokens sizes the message events a reply is split into.
const chunkTokens = 12

// Handler streams chat replies as Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts GET /stream/{sessionID} on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse is the payload of every event.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	State     string `json:"state,omitempty"`
	Intent    string `json:"intent,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, message); err != nil {
		slog.Error("stream request failed", "session_id", sessionID, "error", err)
	}
}

// HandleStreamRequest runs one chat turn and writes the reply as start,
// message and end events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, message string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return errors.New("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	if err := h.send(w, flusher, StreamResponse{Event: "start", SessionID: sessionID}); err != nil {
		return err
	}

	reply, err := h.chatSvc.HandleMessage(ctx, sessionID, message)
	if err != nil {
		h.send(w, flusher, StreamResponse{Event: "error", SessionID: sessionID, Error: "failed to process message"})
		return err
	}

	for _, chunk := range textutil.Chunk(reply.Response, chunkTokens) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.send(w, flusher, StreamResponse{Event: "message", SessionID: reply.SessionID, Content: chunk}); err != nil {
			return err
		}
	}

	return h.send(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: reply.SessionID,
		Content:   reply.Response,
		State:     reply.State,
		Intent:    reply.Intent,
		Finished:  true,
	})
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) error {
	return utils.SendSSEEvent(w, flusher, response.Event, response)
}
