package handlers

import (
	"net/http"

	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/logger"
)

// TriggerSync kicks an immediate upload. When the daily scheduler is
// running the trigger goes through its channel (202); without a
// scheduler the upload runs inline so the caller still gets a result.
func TriggerSync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Syncer == nil || !d.Syncer.Configured() {
			writeError(w, githubsync.ErrNotConfigured)
			return
		}

		if d.SyncTrigger != nil {
			select {
			case d.SyncTrigger <- struct{}{}:
				d.Logger.Info("manual sync triggered via endpoint",
					logger.String("remote_ip", r.RemoteAddr))
				writeJSON(w, http.StatusAccepted, map[string]string{"status": "sync triggered"})
			default:
				d.Logger.Warn("sync already in progress",
					logger.String("remote_ip", r.RemoteAddr))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "sync already in progress"})
			}
			return
		}

		if err := d.Syncer.Up(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sync complete"})
	}
}

// RestoreSync downloads the remote backup and merges it into the local
// dataset, then refreshes the mirror.
func RestoreSync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Syncer == nil || !d.Syncer.Configured() {
			writeError(w, githubsync.ErrNotConfigured)
			return
		}

		stats, err := d.Syncer.Down(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if err := d.State.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
