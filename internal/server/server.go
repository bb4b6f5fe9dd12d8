package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/config"
	"github.com/dukerupert/nutrimenu/internal/handler"
	"github.com/dukerupert/nutrimenu/internal/lookup"
	"github.com/dukerupert/nutrimenu/internal/metrics"
	"github.com/dukerupert/nutrimenu/internal/middleware"
	"github.com/dukerupert/nutrimenu/internal/store"
	ws "github.com/dukerupert/nutrimenu/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	itemH        *handler.ItemHandler
	dishH        *handler.DishHandler
	menuH        *handler.MenuHandler
	userH        *handler.UserHandler
	internalH    *handler.InternalHandler
	rateLimiter  *middleware.RateLimiter
	serviceToken *middleware.ServiceToken
	logger       *slog.Logger
}

// New wires stores, resolvers and handlers. Dishes and users are resolved
// locally unless cfg points at a remote service for them.
func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	itemStore := store.NewItemStore(db)
	dishStore := store.NewDishStore(db)
	menuStore := store.NewMenuStore(db)
	userStore := store.NewUserStore(db)
	compositionStore := store.NewCompositionStore(db)

	dishResolver := compose.NewDishResolver(dishStore, compositionStore, lookup.NewLocalItems(itemStore), logger.With("component", "dish"))
	localDishes := lookup.NewLocalDishes(dishResolver)
	localUsers := lookup.NewLocalUsers(userStore)

	var dishLookup compose.DishLookup = localDishes
	if cfg.Lookup.RemoteDishes() {
		dishLookup = lookup.NewDishClient(lookup.ClientConfig{
			BaseURL: cfg.Lookup.DishServiceURL,
			Token:   cfg.Service.Token,
			Timeout: cfg.Lookup.Timeout,
		})
		logger.Info("resolving dishes remotely", "url", cfg.Lookup.DishServiceURL)
	}

	var userLookup compose.UserLookup = localUsers
	if cfg.Lookup.RemoteUsers() {
		userLookup = lookup.NewCachedUsers(lookup.NewUserClient(lookup.ClientConfig{
			BaseURL: cfg.Lookup.UserServiceURL,
			Token:   cfg.Service.Token,
			Timeout: cfg.Lookup.Timeout,
		}), cfg.Lookup.UserCacheTTL)
		logger.Info("resolving users remotely", "url", cfg.Lookup.UserServiceURL)
	}

	menuResolver := compose.NewMenuResolver(menuStore, compositionStore, dishLookup, cfg.Lookup.Concurrency, logger.With("component", "menu"))
	guard := compose.NewGuard(menuStore, compositionStore)

	httpLogger := logger.With("component", "handler")
	return &Server{
		db:           db,
		hub:          hub,
		itemH:        handler.NewItemHandler(itemStore, hub, httpLogger),
		dishH:        handler.NewDishHandler(dishStore, itemStore, compositionStore, dishResolver, guard, hub, httpLogger),
		menuH:        handler.NewMenuHandler(menuStore, compositionStore, menuResolver, guard, dishLookup, userLookup, hub, httpLogger),
		userH:        handler.NewUserHandler(userStore, hub, httpLogger),
		internalH:    handler.NewInternalHandler(localDishes, localUsers, httpLogger),
		rateLimiter:  middleware.NewRateLimiter(cfg.Rate.PerSecond, cfg.Rate.Burst),
		serviceToken: middleware.NewServiceToken(cfg.Service.TokenHash, logger.With("component", "auth")),
		logger:       logger,
	}
}

func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	s.registerAPIRoutes(mux)

	internalMux := http.NewServeMux()
	internalMux.HandleFunc("GET /internal/dishes/{id}", s.internalH.Dish)
	internalMux.HandleFunc("GET /internal/users/{id}", s.internalH.User)
	internalMux.HandleFunc("GET /internal/users", s.internalH.UserByName)
	mux.Handle("/internal/", s.serviceToken.Require(internalMux))

	var h http.Handler = mux
	h = metrics.InstrumentHandler(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status, code = "database unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"status": status, "clients": s.hub.ClientCount()})
}

// limited rate-limits a write route per client IP.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Items
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.Handle("POST /api/items", s.limited(s.itemH.Create))
	mux.Handle("PUT /api/items/{id}", s.limited(s.itemH.Update))
	mux.Handle("DELETE /api/items/{id}", s.limited(s.itemH.Delete))

	// Dishes
	mux.HandleFunc("GET /api/dishes", s.dishH.List)
	mux.HandleFunc("GET /api/dishes/{id}", s.dishH.Get)
	mux.Handle("POST /api/dishes", s.limited(s.dishH.Create))
	mux.Handle("PUT /api/dishes/{id}", s.limited(s.dishH.Rename))
	mux.Handle("DELETE /api/dishes/{id}", s.limited(s.dishH.Delete))
	mux.HandleFunc("GET /api/dishes/{id}/items", s.dishH.Items)
	mux.Handle("POST /api/dishes/{id}/items", s.limited(s.dishH.AddItem))
	mux.Handle("PUT /api/dishes/{id}/items/{item_id}", s.limited(s.dishH.UpdateItem))
	mux.Handle("DELETE /api/dishes/{id}/items/{item_id}", s.limited(s.dishH.RemoveItem))

	// Menus
	mux.HandleFunc("GET /api/menus", s.menuH.List)
	mux.HandleFunc("GET /api/menus/{id}", s.menuH.Get)
	mux.Handle("POST /api/menus", s.limited(s.menuH.Create))
	mux.Handle("PUT /api/menus/{id}", s.limited(s.menuH.Update))
	mux.Handle("DELETE /api/menus/{id}", s.limited(s.menuH.Delete))
	mux.Handle("POST /api/menus/{id}/dishes", s.limited(s.menuH.AddDish))
	mux.Handle("DELETE /api/menus/{id}/dishes/{dish_id}", s.limited(s.menuH.RemoveDish))

	// Users
	mux.HandleFunc("GET /api/users", s.userH.Find)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.Handle("POST /api/users", s.limited(s.userH.Create))
	mux.Handle("PUT /api/users/{id}", s.limited(s.userH.Rename))
	mux.Handle("DELETE /api/users/{id}", s.limited(s.userH.Delete))
}
