package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/model"
	"github.com/dukerupert/nutrimenu/internal/store"
	"github.com/dukerupert/nutrimenu/internal/websocket"
)

type MenuHandler struct {
	menus    *store.MenuStore
	edges    *store.CompositionStore
	resolver *compose.MenuResolver
	guard    *compose.Guard
	dishes   compose.DishLookup
	users    compose.UserLookup
	notify   Notifier
	logger   *slog.Logger
}

func NewMenuHandler(
	menus *store.MenuStore,
	edges *store.CompositionStore,
	resolver *compose.MenuResolver,
	guard *compose.Guard,
	dishes compose.DishLookup,
	users compose.UserLookup,
	notify Notifier,
	logger *slog.Logger,
) *MenuHandler {
	return &MenuHandler{
		menus:    menus,
		edges:    edges,
		resolver: resolver,
		guard:    guard,
		dishes:   dishes,
		users:    users,
		notify:   notify,
		logger:   logger,
	}
}

type menuRequest struct {
	Meal   string `json:"meal"`
	Date   string `json:"date"`
	UserID *int64 `json:"user_id"`
}

// key validates the request and, for a user menu, that the user exists.
func (h *MenuHandler) key(ctx context.Context, req menuRequest) (model.MenuKey, error) {
	meal, ok := model.ParseMeal(req.Meal)
	if !ok {
		return model.MenuKey{}, apperr.Invalid("unknown meal %q", req.Meal)
	}
	date, ok := model.ParseDate(req.Date)
	if !ok {
		return model.MenuKey{}, apperr.Invalid("date must be YYYY-MM-DD")
	}
	if req.UserID != nil {
		if _, err := h.users.UserByID(ctx, *req.UserID); err != nil {
			return model.MenuKey{}, err
		}
	}
	return model.MenuKey{Meal: meal, Date: date, UserID: req.UserID}, nil
}

// List returns one page of menus, or every menu of ?username=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		h.listByUsername(w, r, username)
		return
	}

	limit, offset, ok := parsePage(r)
	if !ok {
		badRequest(w, "invalid page or size")
		return
	}
	menus, err := h.menus.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to list menus")
		return
	}
	if menus == nil {
		menus = []model.Menu{}
	}
	writeJSON(w, http.StatusOK, menus)
}

func (h *MenuHandler) listByUsername(w http.ResponseWriter, r *http.Request, username string) {
	user, err := h.users.UserByName(r.Context(), username)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get user")
		return
	}
	menus, err := h.menus.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to list menus")
		return
	}
	if menus == nil {
		menus = []model.Menu{}
	}
	writeJSON(w, http.StatusOK, menus)
}

// Get resolves the menu's dishes and totals.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	c, err := h.resolver.ResolveMenu(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to resolve menu")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	ctx := r.Context()
	key, err := h.key(ctx, req)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to validate menu")
		return
	}
	if err := h.guard.CheckCreateMenu(ctx, key); err != nil {
		writeError(w, r, h.logger, err, "failed to create menu")
		return
	}

	menu, err := h.menus.Create(ctx, key)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to create menu")
		return
	}
	h.notify.Publish(websocket.EntityMenu, websocket.ActionCreated, menu.ID, nil)
	writeJSON(w, http.StatusCreated, menu)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req menuRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	ctx := r.Context()
	key, err := h.key(ctx, req)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to validate menu")
		return
	}
	if err := h.guard.CheckUpdateMenu(ctx, id, key); err != nil {
		writeError(w, r, h.logger, err, "failed to update menu")
		return
	}

	menu, err := h.menus.Update(ctx, id, key)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to update menu")
		return
	}
	if menu == nil {
		writeError(w, r, h.logger, apperr.NotFound("menu with id %d was not found", id), "")
		return
	}
	h.notify.Publish(websocket.EntityMenu, websocket.ActionUpdated, id, nil)
	writeJSON(w, http.StatusOK, menu)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	existing, err := h.menus.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get menu")
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not found"})
		return
	}

	if err := h.menus.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, "failed to delete menu")
		return
	}
	h.notify.Publish(websocket.EntityMenu, websocket.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// AddDish puts a dish on the menu. The dish is resolved through the dish
// lookup, so an unreachable dish service fails the request with 503. The
// response carries only the new edge; the menu's totals come from Get so a
// committed insert is never reported as failed because another dish on the
// menu cannot be resolved.
func (h *MenuHandler) AddDish(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req struct {
		DishID int64 `json:"dish_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	ctx := r.Context()
	menu, err := h.menus.GetByID(ctx, menuID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get menu")
		return
	}
	if menu == nil {
		writeError(w, r, h.logger, apperr.NotFound("menu with id %d was not found", menuID), "")
		return
	}
	dish, err := h.dishes.Dish(ctx, req.DishID)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to get dish")
		return
	}

	edge := model.MenuDishEdge(menuID, req.DishID)
	if err := h.guard.CheckAddComposition(ctx, edge); err != nil {
		writeError(w, r, h.logger, err, "failed to add dish")
		return
	}
	if err := h.edges.InsertEdge(ctx, edge, 0); err != nil {
		writeError(w, r, h.logger, err, "failed to add dish")
		return
	}
	h.notify.Publish(websocket.EntityMenu, websocket.ActionUpdated, menuID, map[string]any{"dish_id": req.DishID})
	writeJSON(w, http.StatusCreated, model.MenuDish{MenuID: menuID, Dish: *dish})
}

func (h *MenuHandler) RemoveDish(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	dishID, err := parsePathID(r, "dish_id")
	if err != nil {
		badRequest(w, "invalid dish_id")
		return
	}

	edge := model.MenuDishEdge(menuID, dishID)
	found, err := h.edges.DeleteEdge(r.Context(), edge)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to remove dish")
		return
	}
	if !found {
		writeError(w, r, h.logger, apperr.NotFound("%s was not found", edge), "")
		return
	}
	h.notify.Publish(websocket.EntityMenu, websocket.ActionUpdated, menuID, map[string]any{"dish_id": dishID})
	w.WriteHeader(http.StatusNoContent)
}
