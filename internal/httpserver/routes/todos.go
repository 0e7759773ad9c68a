package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/httpserver/handlers"
)

func init() { Register(registerTodos) }

func registerTodos(r chi.Router, d deps.Deps) {
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", handlers.ListTodoLists(d))
		r.Post("/", handlers.CreateTodoList(d))
		r.Delete("/{id}", handlers.DeleteTodoList(d))
		r.Get("/{id}/items", handlers.ListTodoItems(d))
		r.Post("/{id}/items", handlers.CreateTodoItem(d))
		r.Patch("/{id}/items/{itemID}", handlers.SetTodoItemDone(d))
		r.Delete("/{id}/items/{itemID}", handlers.DeleteTodoItem(d))
	})
}
