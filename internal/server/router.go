package server

import (
	"net/http"

	"github.com/fermentlab/insightd/internal/api"
	"github.com/fermentlab/insightd/internal/api/handlers"
	"github.com/fermentlab/insightd/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	QueryHandler     *handlers.QueryHandler
	SearchHandler    *handlers.SearchHandler
	DailyHandler     *handlers.DailyHandler
	InsightHandler   *handlers.InsightHandler
	SynthesisHandler *handlers.SynthesisHandler
	StatsHandler     *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Scope)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/query", cfg.QueryHandler.Query)

	r.Post("/search", cfg.SearchHandler.Semantic)
	r.Get("/search/topic", cfg.SearchHandler.Topic)

	r.Get("/daily", cfg.DailyHandler.Get)

	r.Route("/insights", func(r chi.Router) {
		r.Get("/", cfg.InsightHandler.List)
		r.Get("/{id}", cfg.InsightHandler.Get)
	})

	r.Route("/syntheses", func(r chi.Router) {
		r.Get("/", cfg.SynthesisHandler.List)
		r.Get("/{id}", cfg.SynthesisHandler.Get)
	})

	r.Get("/stats", cfg.StatsHandler.Get)

	return r
}
