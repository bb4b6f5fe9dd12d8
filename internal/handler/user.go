package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/nutrimenu/internal/store"
	"github.com/dukerupert/nutrimenu/internal/websocket"
)

type UserHandler struct {
	users  *store.UserStore
	notify Notifier
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, notify Notifier, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, notify: notify, logger: logger}
}

type userRequest struct {
	Name string `json:"name"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Find looks a user up by ?name=.
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}
	u, err := h.users.GetByName(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user with name " + name + " was not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	u, err := h.users.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to create user")
		return
	}
	h.notify.Publish(websocket.EntityUser, websocket.ActionCreated, u.ID, nil)
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	u, err := h.users.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to rename user")
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	h.notify.Publish(websocket.EntityUser, websocket.ActionUpdated, id, nil)
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	existing, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, "failed to delete user")
		return
	}
	h.notify.Publish(websocket.EntityUser, websocket.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

