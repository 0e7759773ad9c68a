package handlers

import (
	"net/http"

	"github.com/speedial/speedial/internal/domain"
	"github.com/speedial/speedial/internal/httpserver/deps"
	"github.com/speedial/speedial/internal/state"
)

// ListGroups returns all groups in pos order.
func ListGroups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State.Groups())
	}
}

type addGroupRequest struct {
	Name     string               `json:"name"`
	Position domain.GroupPosition `json:"position"`
}

// AddGroup creates a group at the top or bottom of the ordering.
func AddGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addGroupRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if req.Position == "" {
			req.Position = domain.PositionBottom
		}

		id, err := d.State.AddGroup(r.Context(), req.Name, req.Position)
		if err != nil {
			writeError(w, err)
			return
		}
		g, _ := d.State.Group(id)
		writeJSON(w, http.StatusCreated, g)
	}
}

// UpdateGroup renames a group.
func UpdateGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid group id")
			return
		}
		var upd state.GroupUpdate
		if err := decodeBody(r, &upd); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.State.UpdateGroup(r.Context(), id, upd); err != nil {
			writeError(w, err)
			return
		}
		g, _ := d.State.Group(id)
		writeJSON(w, http.StatusOK, g)
	}
}

// DeleteGroup removes a group and every dial it owns. When the deleted
// group was the selected one, selection moves to the first remaining
// group so exactly one group stays selected.
func DeleteGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid group id")
			return
		}

		wasSelected := false
		if sel, ok := d.State.SelectedGroup(); ok && sel.ID == id {
			wasSelected = true
		}

		if err := d.State.DeleteGroup(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}

		if wasSelected {
			if remaining := d.State.Groups(); len(remaining) > 0 {
				if err := d.State.SetSelectedGroup(r.Context(), remaining[0].ID); err != nil {
					writeError(w, err)
					return
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SelectGroup marks a group as the selected one.
func SelectGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid group id")
			return
		}
		if err := d.State.SetSelectedGroup(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		g, _ := d.State.Group(id)
		writeJSON(w, http.StatusOK, g)
	}
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

// ReorderGroups rewrites the group ordering from a full permutation of
// group ids.
func ReorderGroups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.State.ReorderGroups(r.Context(), req.IDs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d.State.Groups())
	}
}
