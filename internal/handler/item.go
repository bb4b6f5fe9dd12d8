package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/nutrimenu/internal/model"
	"github.com/dukerupert/nutrimenu/internal/store"
	"github.com/dukerupert/nutrimenu/internal/websocket"
)

type ItemHandler struct {
	items  *store.ItemStore
	notify Notifier
	logger *slog.Logger
}

func NewItemHandler(items *store.ItemStore, notify Notifier, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, notify: notify, logger: logger}
}

type itemRequest struct {
	Name string `json:"name"`
	model.Nutrients
}

func (req *itemRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if !req.Nutrients.Valid() {
		return fmt.Sprintf("nutrients must be between 0 and %d", model.MaxPer100g)
	}
	return ""
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		h.getByName(w, r, name)
		return
	}

	limit, offset, ok := parsePage(r)
	if !ok {
		badRequest(w, "invalid page or size")
		return
	}
	items, err := h.items.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) getByName(w http.ResponseWriter, r *http.Request, name string) {
	item, err := h.items.GetByName(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get item")
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item with name " + name + " was not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get item")
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	item, err := h.items.Create(r.Context(), req.Name, req.Nutrients)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to create item")
		return
	}
	h.notify.Publish(websocket.EntityItem, websocket.ActionCreated, item.ID, nil)
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	existing, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get item")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	item, err := h.items.Update(r.Context(), id, req.Name, req.Nutrients)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to update item")
		return
	}
	h.notify.Publish(websocket.EntityItem, websocket.ActionUpdated, id, nil)
	writeJSON(w, http.StatusOK, item)
}

// Delete removes the item. Dishes that used it simply stop counting it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	existing, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get item")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, "failed to delete item")
		return
	}
	h.notify.Publish(websocket.EntityItem, websocket.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
