package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/httpserver/handlers"
)

func init() { Register(registerBackup) }

func registerBackup(r chi.Router, d deps.Deps) {
	r.Route("/backup", func(r chi.Router) {
		r.Get("/export", handlers.ExportBackup(d))
		r.Post("/import", handlers.ImportBackup(d))
		r.Get("/sync-config", handlers.ExportSyncConfig(d))
	})
}
