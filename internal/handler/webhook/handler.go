package webhook

import (
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// Handler acknowledges inbound notifications.
type Handler struct {
	logger *slog.Logger
}

// New creates a webhook handler. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// RegisterRoutes mounts the webhook routes under /webhook.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/webhook", func(wr chi.Router) {
		wr.Post("/notify", h.handleNotify)
	})
}

func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondInvalidBody(w)
		return
	}

	h.logger.Info("webhook notification received", "fields", slices.Sorted(maps.Keys(payload)))
	utils.RespondSuccess(w)
}
