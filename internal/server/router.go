package server

import (
	"dota-leaderboard/internal/constants"
	"dota-leaderboard/internal/metrics"
	"dota-leaderboard/internal/middleware"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func NewRouter(h *Handler, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	r.Use(chimw.Recoverer)
	r.Use(c.Handler)
	r.Use(middleware.RequestID(logger))
	r.Use(chimw.Timeout(constants.RequestTimeout))

	r.Get("/health", h.Health)
	r.Get("/leaderboard", h.Leaderboard)
	r.Get("/compare", h.Compare)
	r.Get("/recommend", h.Recommend)
	r.Get("/players/{id}", h.Player)
	r.Get("/heroes/{id}", h.Hero)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
