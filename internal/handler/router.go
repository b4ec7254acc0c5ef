package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	calllogHandler "github.com/zhouzirui/dinebot/backend/internal/handler/calllog"
	"github.com/zhouzirui/dinebot/backend/internal/handler/chat"
	kbHandler "github.com/zhouzirui/dinebot/backend/internal/handler/kb"
	"github.com/zhouzirui/dinebot/backend/internal/handler/stream"
	"github.com/zhouzirui/dinebot/backend/internal/handler/webhook"
	"github.com/zhouzirui/dinebot/backend/internal/handler/ws"
	"github.com/zhouzirui/dinebot/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/dinebot/backend/internal/middleware"
	kbModel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	calllogService "github.com/zhouzirui/dinebot/backend/internal/service/calllog"
	chatService "github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/pkg/utils"
)

// Deps are the services the router exposes.
type Deps struct {
	Chat           *chatService.Service
	KB             kbModel.Store
	CallLog        *calllogService.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Chat).RegisterRoutes(api)
		stream.New(deps.Chat).RegisterRoutes(api)
		ws.New(deps.Chat, middlewarePkg.OriginChecker(deps.AllowedOrigins)).RegisterRoutes(api)

		api.Get("/test", handleHealth)
	})

	kbHandler.New(deps.KB).RegisterRoutes(r)
	calllogHandler.New(deps.CallLog).RegisterRoutes(r)
	webhook.New(nil).RegisterRoutes(r)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "API is working",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
