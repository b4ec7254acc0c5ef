package calllog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	callService "github.com/zhouzirui/dinebot/backend/internal/service/calllog"
	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// Handler accepts conversation log entries from clients.
type Handler struct {
	logger *callService.Logger
	now    func() time.Time
}

// New creates a call log handler.
func New(logger *callService.Logger) *Handler {
	return &Handler{logger: logger, now: time.Now}
}

// RegisterRoutes mounts POST /log_call on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/log_call", h.handleLogCall)
}

// Required fields are pointers so that presence, not content, is checked.
type logCallRequest struct {
	SessionID   *string  `json:"session_id"`
	UserQuery   *string  `json:"user_query"`
	BotResponse *string  `json:"bot_response"`
	Intent      *string  `json:"intent"`
	City        string   `json:"city"`
	Duration    *float64 `json:"duration"`
}

func (req logCallRequest) missing() string {
	switch {
	case req.SessionID == nil:
		return "session_id"
	case req.UserQuery == nil:
		return "user_query"
	case req.BotResponse == nil:
		return "bot_response"
	case req.Intent == nil:
		return "intent"
	}
	return ""
}

func (h *Handler) handleLogCall(w http.ResponseWriter, r *http.Request) {
	var payload logCallRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondInvalidBody(w)
		return
	}
	if field := payload.missing(); field != "" {
		utils.RespondMissingField(w, field)
		return
	}

	rec := callService.Record{
		Timestamp:   h.now(),
		SessionID:   *payload.SessionID,
		UserQuery:   *payload.UserQuery,
		BotResponse: *payload.BotResponse,
		Intent:      *payload.Intent,
		City:        payload.City,
	}
	if payload.Duration != nil && *payload.Duration > 0 {
		rec.Duration = time.Duration(*payload.Duration * float64(time.Second))
	}

	if !h.logger.Log(r.Context(), rec) {
		slog.Warn("log_call rejected", "session_id", rec.SessionID, "enabled", h.logger.Enabled())
		utils.RespondError(w, http.StatusInternalServerError, "Failed to log conversation")
		return
	}

	utils.RespondSuccess(w)
}
