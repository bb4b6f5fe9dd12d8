package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/model"
	"github.com/dukerupert/nutrimenu/internal/store"
	"github.com/dukerupert/nutrimenu/internal/websocket"
)

type DishHandler struct {
	dishes   *store.DishStore
	items    *store.ItemStore
	edges    *store.CompositionStore
	resolver *compose.DishResolver
	guard    *compose.Guard
	notify   Notifier
	logger   *slog.Logger
}

func NewDishHandler(
	dishes *store.DishStore,
	items *store.ItemStore,
	edges *store.CompositionStore,
	resolver *compose.DishResolver,
	guard *compose.Guard,
	notify Notifier,
	logger *slog.Logger,
) *DishHandler {
	return &DishHandler{
		dishes:   dishes,
		items:    items,
		edges:    edges,
		resolver: resolver,
		guard:    guard,
		notify:   notify,
		logger:   logger,
	}
}

type dishRequest struct {
	Name string `json:"name"`
}

var gramsRange = fmt.Sprintf("grams must be between 0 and %d", model.MaxGrams)

type dishItemRequest struct {
	ItemID int64 `json:"item_id"`
	Grams  *int  `json:"grams"`
}

// List returns one page of dishes with their totals.
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		h.getByName(w, r, name)
		return
	}

	limit, offset, ok := parsePage(r)
	if !ok {
		badRequest(w, "invalid page or size")
		return
	}
	dishes, err := h.dishes.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to list dishes")
		return
	}

	summaries := make([]model.DishSummary, 0, len(dishes))
	for _, d := range dishes {
		s, err := h.resolver.Summary(r.Context(), d.ID)
		if apperr.IsNotFound(err) {
			// deleted since the page was read
			continue
		}
		if err != nil {
			writeError(w, r, h.logger, err, "failed to resolve dish")
			return
		}
		summaries = append(summaries, *s)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *DishHandler) getByName(w http.ResponseWriter, r *http.Request, name string) {
	dish, err := h.dishes.GetByName(r.Context(), name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get dish")
		return
	}
	if dish == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish with name " + name + " was not found"})
		return
	}
	s, err := h.resolver.Summary(r.Context(), dish.ID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Get returns the dish with its nutrient totals.
func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	s, err := h.resolver.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Items returns the dish's resolved items with their grams and the total.
func (h *DishHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	c, err := h.resolver.ResolveDish(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	dish, err := h.dishes.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to create dish")
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionCreated, dish.ID, nil)
	writeJSON(w, http.StatusCreated, model.DishSummary{ID: dish.ID, Name: dish.Name})
}

func (h *DishHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req dishRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	dish, err := h.dishes.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to rename dish")
		return
	}
	if dish == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionUpdated, id, nil)

	s, err := h.resolver.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Delete removes the dish and its item edges. Menus that list it resolve it
// as a placeholder from then on.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	existing, err := h.dishes.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get dish")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		return
	}

	if err := h.dishes.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, "failed to delete dish")
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// AddItem puts an item into the dish with the given grams and responds with
// the new edge. Re-adding an item already in the dish is a conflict; use
// UpdateItem to change its grams.
func (h *DishHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req dishItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.Grams == nil || !model.ValidGrams(*req.Grams) {
		badRequest(w, gramsRange)
		return
	}

	ctx := r.Context()
	dish, err := h.dishes.GetByID(ctx, dishID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get dish")
		return
	}
	if dish == nil {
		writeError(w, r, h.logger, apperr.NotFound("dish with id %d was not found", dishID), "")
		return
	}
	item, err := h.items.GetByID(ctx, req.ItemID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, r, h.logger, apperr.NotFound("item with id %d was not found", req.ItemID), "")
		return
	}

	edge := model.ItemDishEdge(req.ItemID, dishID)
	if err := h.guard.CheckAddComposition(ctx, edge); err != nil {
		writeError(w, r, h.logger, err, "failed to add item")
		return
	}
	if err := h.edges.InsertEdge(ctx, edge, *req.Grams); err != nil {
		writeError(w, r, h.logger, err, "failed to add item")
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionUpdated, dishID, map[string]any{"item_id": req.ItemID})
	writeJSON(w, http.StatusCreated, model.DishItem{
		DishID:      dishID,
		ItemPortion: model.ItemPortion{Item: *item, Grams: *req.Grams},
	})
}

// UpdateItem changes the grams of an item already in the dish.
func (h *DishHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	itemID, err := parsePathID(r, "item_id")
	if err != nil {
		badRequest(w, "invalid item_id")
		return
	}
	var req dishItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.Grams == nil || !model.ValidGrams(*req.Grams) {
		badRequest(w, gramsRange)
		return
	}

	found, err := h.edges.UpdateGrams(r.Context(), itemID, dishID, *req.Grams)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to update grams")
		return
	}
	if !found {
		writeError(w, r, h.logger, apperr.NotFound("%s was not found", model.ItemDishEdge(itemID, dishID)), "")
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionUpdated, dishID, map[string]any{"item_id": itemID})

	c, err := h.resolver.ResolveDish(r.Context(), dishID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve dish")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *DishHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	itemID, err := parsePathID(r, "item_id")
	if err != nil {
		badRequest(w, "invalid item_id")
		return
	}

	edge := model.ItemDishEdge(itemID, dishID)
	found, err := h.edges.DeleteEdge(r.Context(), edge)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to remove item")
		return
	}
	if !found {
		writeError(w, r, h.logger, apperr.NotFound("%s was not found", edge), "")
		return
	}
	h.notify.Publish(websocket.EntityDish, websocket.ActionUpdated, dishID, map[string]any{"item_id": itemID})
	w.WriteHeader(http.StatusNoContent)
}
