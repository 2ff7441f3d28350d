package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumen-creative/leadchat/internal/config"
	"github.com/lumen-creative/leadchat/internal/handler/chatturn"
	middlewarePkg "github.com/lumen-creative/leadchat/internal/middleware"
	"github.com/lumen-creative/leadchat/internal/service/pipeline"
	"github.com/lumen-creative/leadchat/pkg/utils"
)

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires HTTP routes to the pipeline. pinger may be nil when the
// in-memory store is in use.
func NewRouter(pipelineSvc *pipeline.Service, rules config.Rules, pinger Pinger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chatturn.New(pipelineSvc, rules, logger)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(req.Context()); err != nil {
				utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
