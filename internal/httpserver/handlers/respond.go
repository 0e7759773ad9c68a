package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/state"
	"github.com/speedial/speedial/internal/store/sqlite"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, state.ErrNotFound), errors.Is(err, sql.ErrNoRows),
		errors.Is(err, githubsync.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, state.ErrInvalidInput), errors.Is(err, backup.ErrInvalidDocument):
		status = http.StatusBadRequest
	case errors.Is(err, sqlite.ErrLastGroup), errors.Is(err, githubsync.ErrNotConfigured):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// idParam parses the chi {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
