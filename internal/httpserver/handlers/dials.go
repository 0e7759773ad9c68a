package handlers

import (
	"net/http"

	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/state"
)

// ListDials returns dials for the dashboard. With ?filtered=true only
// the selected group's dials come back, in pos order.
func ListDials(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filtered") == "true" {
			writeJSON(w, http.StatusOK, d.State.FilteredDials())
			return
		}
		writeJSON(w, http.StatusOK, d.State.Dials())
	}
}

// AddDial creates a dial appended at the end of its group.
func AddDial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in state.AddDialInput
		if err := decodeBody(r, &in); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		id, err := d.State.AddDial(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		dial, _ := d.State.Dial(id)
		writeJSON(w, http.StatusCreated, dial)
	}
}

// UpdateDial edits a dial's fields; position and group are changed via
// the reorder and move endpoints.
func UpdateDial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid dial id")
			return
		}
		var upd state.DialUpdate
		if err := decodeBody(r, &upd); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.State.UpdateDial(r.Context(), id, upd); err != nil {
			writeError(w, err)
			return
		}
		dial, _ := d.State.Dial(id)
		writeJSON(w, http.StatusOK, dial)
	}
}

// DeleteDial removes a dial; its group's remaining dials are renumbered.
func DeleteDial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid dial id")
			return
		}
		if err := d.State.DeleteDial(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClickDial bumps a dial's click counter.
func ClickDial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid dial id")
			return
		}
		if err := d.State.IncrementClickCount(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		dial, _ := d.State.Dial(id)
		writeJSON(w, http.StatusOK, dial)
	}
}

// ReorderDials rewrites one group's dial ordering from a full
// permutation of that group's dial ids.
func ReorderDials(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.State.ReorderDials(r.Context(), req.IDs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d.State.FilteredDials())
	}
}

type moveDialRequest struct {
	GroupID int64 `json:"groupId"`
}

// MoveDial transfers a dial to another group, appending it at the end
// of the destination ordering.
func MoveDial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid dial id")
			return
		}
		var req moveDialRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.State.MoveDialToGroup(r.Context(), id, req.GroupID); err != nil {
			writeError(w, err)
			return
		}
		dial, _ := d.State.Dial(id)
		writeJSON(w, http.StatusOK, dial)
	}
}
