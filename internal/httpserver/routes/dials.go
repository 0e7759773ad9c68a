package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/httpserver/handlers"
)

func init() { Register(registerDials) }

func registerDials(r chi.Router, d deps.Deps) {
	r.Route("/dials", func(r chi.Router) {
		r.Get("/", handlers.ListDials(d))
		r.Post("/", handlers.AddDial(d))
		r.Post("/reorder", handlers.ReorderDials(d))
		r.Patch("/{id}", handlers.UpdateDial(d))
		r.Delete("/{id}", handlers.DeleteDial(d))
		r.Post("/{id}/click", handlers.ClickDial(d))
		r.Post("/{id}/move", handlers.MoveDial(d))
	})
}
