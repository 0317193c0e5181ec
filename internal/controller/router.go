package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", c.health)
	r.Route("/api/rooms/{room-id}", func(r chi.Router) {
		r.Get("/state", c.getRoomState)
	})
	r.Route("/ws/rooms", func(r chi.Router) {
		r.Get("/{room-id}", c.joinRoom)
	})

	return r
}
