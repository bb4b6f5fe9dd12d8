package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/database"
	"github.com/dukerupert/nutrimenu/internal/lookup"
	"github.com/dukerupert/nutrimenu/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(entity, action string, id int64, extra map[string]any) {
	n.mu.Lock()
	n.events = append(n.events, entity+"_"+action)
	n.mu.Unlock()
}

type testEnv struct {
	mux    *http.ServeMux
	notify *recordingNotifier

	items  *store.ItemStore
	dishes *store.DishStore
	menus  *store.MenuStore
	users  *store.UserStore
	edges  *store.CompositionStore
}

// setupHandlerTest wires every handler against an in-memory database. If
// dishLookup is nil, dishes resolve locally.
func setupHandlerTest(t *testing.T, dishLookup compose.DishLookup) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	env := &testEnv{
		mux:    http.NewServeMux(),
		notify: &recordingNotifier{},
		items:  store.NewItemStore(db),
		dishes: store.NewDishStore(db),
		menus:  store.NewMenuStore(db),
		users:  store.NewUserStore(db),
		edges:  store.NewCompositionStore(db),
	}

	dishResolver := compose.NewDishResolver(env.dishes, env.edges, lookup.NewLocalItems(env.items), logger)
	localDishes := lookup.NewLocalDishes(dishResolver)
	localUsers := lookup.NewLocalUsers(env.users)
	if dishLookup == nil {
		dishLookup = localDishes
	}
	menuResolver := compose.NewMenuResolver(env.menus, env.edges, dishLookup, 4, logger)
	guard := compose.NewGuard(env.menus, env.edges)

	itemH := NewItemHandler(env.items, env.notify, logger)
	dishH := NewDishHandler(env.dishes, env.items, env.edges, dishResolver, guard, env.notify, logger)
	menuH := NewMenuHandler(env.menus, env.edges, menuResolver, guard, dishLookup, localUsers, env.notify, logger)
	userH := NewUserHandler(env.users, env.notify, logger)
	internalH := NewInternalHandler(localDishes, localUsers, logger)

	m := env.mux
	m.HandleFunc("GET /api/items", itemH.List)
	m.HandleFunc("GET /api/items/{id}", itemH.Get)
	m.HandleFunc("POST /api/items", itemH.Create)
	m.HandleFunc("PUT /api/items/{id}", itemH.Update)
	m.HandleFunc("DELETE /api/items/{id}", itemH.Delete)
	m.HandleFunc("GET /api/dishes", dishH.List)
	m.HandleFunc("GET /api/dishes/{id}", dishH.Get)
	m.HandleFunc("POST /api/dishes", dishH.Create)
	m.HandleFunc("PUT /api/dishes/{id}", dishH.Rename)
	m.HandleFunc("DELETE /api/dishes/{id}", dishH.Delete)
	m.HandleFunc("GET /api/dishes/{id}/items", dishH.Items)
	m.HandleFunc("POST /api/dishes/{id}/items", dishH.AddItem)
	m.HandleFunc("PUT /api/dishes/{id}/items/{item_id}", dishH.UpdateItem)
	m.HandleFunc("DELETE /api/dishes/{id}/items/{item_id}", dishH.RemoveItem)
	m.HandleFunc("GET /api/menus", menuH.List)
	m.HandleFunc("GET /api/menus/{id}", menuH.Get)
	m.HandleFunc("POST /api/menus", menuH.Create)
	m.HandleFunc("PUT /api/menus/{id}", menuH.Update)
	m.HandleFunc("DELETE /api/menus/{id}", menuH.Delete)
	m.HandleFunc("POST /api/menus/{id}/dishes", menuH.AddDish)
	m.HandleFunc("DELETE /api/menus/{id}/dishes/{dish_id}", menuH.RemoveDish)
	m.HandleFunc("GET /api/users", userH.Find)
	m.HandleFunc("GET /api/users/{id}", userH.Get)
	m.HandleFunc("POST /api/users", userH.Create)
	m.HandleFunc("PUT /api/users/{id}", userH.Rename)
	m.HandleFunc("DELETE /api/users/{id}", userH.Delete)
	m.HandleFunc("GET /internal/dishes/{id}", internalH.Dish)
	m.HandleFunc("GET /internal/users/{id}", internalH.User)
	m.HandleFunc("GET /internal/users", internalH.UserByName)
	return env
}

// do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil.
func (env *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec.Code
}

type errorBody struct {
	Error string `json:"error"`
}
