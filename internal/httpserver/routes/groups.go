package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/httpserver/handlers"
)

func init() { Register(registerGroups) }

func registerGroups(r chi.Router, d deps.Deps) {
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", handlers.ListGroups(d))
		r.Post("/", handlers.AddGroup(d))
		r.Post("/reorder", handlers.ReorderGroups(d))
		r.Patch("/{id}", handlers.UpdateGroup(d))
		r.Delete("/{id}", handlers.DeleteGroup(d))
		r.Post("/{id}/select", handlers.SelectGroup(d))
	})
}
