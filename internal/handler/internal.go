package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/lookup"
)

// InternalHandler serves the lookups peer services make when dishes or
// users live on this side of a service boundary.
type InternalHandler struct {
	dishes compose.DishLookup
	users  compose.UserLookup
	logger *slog.Logger
}

func NewInternalHandler(dishes compose.DishLookup, users compose.UserLookup, logger *slog.Logger) *InternalHandler {
	return &InternalHandler{dishes: dishes, users: users, logger: logger}
}

// Dish returns the DishSummary the remote dish client decodes. Every answer
// carries lookup.PeerHeader so the client can tell this route's 404 apart
// from one produced elsewhere.
func (h *InternalHandler) Dish(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(lookup.PeerHeader, "dish")
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	d, err := h.dishes.Dish(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *InternalHandler) User(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(lookup.PeerHeader, "user")
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	u, err := h.users.UserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *InternalHandler) UserByName(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(lookup.PeerHeader, "user")
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}
	u, err := h.users.UserByName(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
