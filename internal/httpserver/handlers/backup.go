package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/httpserver/deps"
)

// ExportBackup streams the full dataset as a pretty-printed JSON
// download named after today's date.
func ExportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := d.Codec.Export(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		payload, err := backup.Marshal(doc)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", backup.DataFilename(d.Now())))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

// ImportBackup merges an exported document into the local dataset.
// Groups are matched by name; dials are always appended.
func ImportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() { _ = r.Body.Close() }()

		var doc backup.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			badRequest(w, "malformed backup document")
			return
		}

		stats, err := d.Codec.Import(r.Context(), &doc)
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

// ExportSyncConfig downloads the loaded sync configuration so it can be
// restored on another machine alongside the data backup.
func ExportSyncConfig(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.SyncConfig == nil {
			writeError(w, fmt.Errorf("sync config export: %w", githubsync.ErrNotConfigured))
			return
		}
		payload, err := json.MarshalIndent(d.SyncConfig, "", "  ")
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", backup.ConfigFilename(d.Now())))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}
