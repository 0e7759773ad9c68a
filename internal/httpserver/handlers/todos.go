package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/speedial/speedial/internal/domain"
	"github.com/speedial/speedial/internal/httpserver/deps"
)

// Todo lists have no ordering or mirror semantics; handlers talk to the
// store directly.

func ListTodoLists(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lists, err := d.Todos.ListLists(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lists)
	}
}

type createTodoListRequest struct {
	Title string `json:"title"`
}

func CreateTodoList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTodoListRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if req.Title == "" {
			badRequest(w, "todo list title must not be empty")
			return
		}
		l := &domain.TodoList{Title: req.Title}
		if err := d.Todos.CreateList(r.Context(), l); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func DeleteTodoList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid todo list id")
			return
		}
		if err := d.Todos.DeleteList(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListTodoItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid todo list id")
			return
		}
		items, err := d.Todos.ListItems(r.Context(), listID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type createTodoItemRequest struct {
	Title string `json:"title"`
}

func CreateTodoItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, err := idParam(r)
		if err != nil {
			badRequest(w, "invalid todo list id")
			return
		}
		var req createTodoItemRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if req.Title == "" {
			badRequest(w, "todo item title must not be empty")
			return
		}
		it := &domain.TodoItem{ListID: listID, Title: req.Title}
		if err := d.Todos.CreateItem(r.Context(), it); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, it)
	}
}

type setTodoDoneRequest struct {
	Done bool `json:"done"`
}

func SetTodoItemDone(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if err != nil {
			badRequest(w, "invalid todo item id")
			return
		}
		var req setTodoDoneRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "malformed request body")
			return
		}
		if err := d.Todos.SetItemDone(r.Context(), itemID, req.Done); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteTodoItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
		if err != nil {
			badRequest(w, "invalid todo item id")
			return
		}
		if err := d.Todos.DeleteItem(r.Context(), itemID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
