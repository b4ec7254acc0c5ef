package kb

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	kbmodel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// Handler exposes read-only knowledge base lookups.
type Handler struct {
	store kbmodel.Store
}

// New creates a knowledge base handler.
func New(store kbmodel.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the lookup route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/kb", h.handleLookup)
}

// handleLookup serves GET /kb?city=&intent=.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	intent := r.URL.Query().Get("intent")
	if city == "" || intent == "" {
		utils.RespondError(w, http.StatusBadRequest, "city and intent are required")
		return
	}

	entries, err := kbmodel.Lookup(r.Context(), h.store, city, intent)
	switch {
	case err == nil:
		utils.RespondData(w, entries)
	case errors.Is(err, kbmodel.ErrCityNotFound), errors.Is(err, kbmodel.ErrCityRequired):
		utils.RespondError(w, http.StatusNotFound, "knowledge base not found for city")
	case errors.Is(err, kbmodel.ErrIntentNotFound):
		utils.RespondError(w, http.StatusNotFound, "intent not found")
	default:
		slog.Error("knowledge base lookup failed", "city", city, "intent", intent, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "knowledge base unavailable")
	}
}
