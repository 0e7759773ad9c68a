package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/speedial/speedial/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Groups *int   `json:"groups,omitempty"`
	Dials  *int   `json:"dials,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Status summarizes the health of the data layer: the in-memory mirror,
// the optional thumbnail cache and the sync client.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups := len(d.State.Groups())
		dials := len(d.State.Dials())

		components := map[string]componentStatus{
			"store": {
				OK:     groups > 0,
				Groups: &groups,
				Dials:  &dials,
			},
			"thumb_cache": checkThumbCache(d),
			"sync":        checkSync(d),
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode collapses component states into one word for dashboards.
func determineMode(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}
	if cache, exists := components["thumb_cache"]; exists && !cache.OK && cache.Mode != "disabled" {
		return "degraded"
	}
	return "ok"
}

func checkThumbCache(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

func checkSync(d deps.Deps) componentStatus {
	if d.Syncer == nil || !d.Syncer.Configured() {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "configured"}
}
