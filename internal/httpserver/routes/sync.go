package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/httpserver/handlers"
	"github.com/speedial/speedial/internal/httpserver/mw"
)

func init() { Register(registerSync) }

// Sync endpoints hit the GitHub API, so they are rate limited to keep a
// looping client from burning the token's quota.
func registerSync(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             3,
		RefillPerIPPerMin: 2,
		MaxEntries:        256,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
	}))
	limited.Post("/sync", handlers.TriggerSync(d))
	limited.Post("/sync/restore", handlers.RestoreSync(d))
}
