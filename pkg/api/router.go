package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// GetRouter initialises a new http router and applies all routes
func GetRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	return applyRoutes(r, h)
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Get("/health", getHealth)

	r.Route("/roster", func(r chi.Router) {
		r.Get("/", h.getRoster)
		r.Get("/stats", h.getStats)
		r.Get("/sort-modes", getSortModes)

		r.Post("/participants", h.postParticipant)
		r.Route("/participants/{no}", func(r chi.Router) {
			r.Put("/", h.putParticipant)
			r.Post("/toggle/{session}", h.postToggle)
			r.Post("/delete", h.postDeleteRequest)
			r.Post("/delete/confirm", h.postDeleteConfirm)
			r.Post("/delete/cancel", h.postDeleteCancel)
		})
	})

	return r
}
