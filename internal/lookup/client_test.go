package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/model"
)

func TestDishClientFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/dishes/10" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(model.DishSummary{
			ID: 10, Name: "Borscht", Nutrients: model.Nutrients{Calories: 149, Carbs: 12, Protein: 4, Fats: 6},
		})
	}))
	defer server.Close()

	c := NewDishClient(ClientConfig{BaseURL: server.URL + "/", Token: "s3cret"})
	d, err := c.Dish(context.Background(), 10)
	if err != nil {
		t.Fatalf("dish: %v", err)
	}
	if d.Name != "Borscht" || d.Calories != 149 || d.Fats != 6 {
		t.Errorf("dish = %+v", d)
	}
}

func TestDishClientNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(PeerHeader, "dish")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewDishClient(ClientConfig{BaseURL: server.URL})
	_, err := c.Dish(context.Background(), 20)
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if want := "dish with id 20 was not found"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestDishClientForeign404IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	defer server.Close()

	c := NewDishClient(ClientConfig{BaseURL: server.URL + "/wrong-prefix"})
	_, err := c.Dish(context.Background(), 10)
	if !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestDishClientForeign404DoesNotPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	defer server.Close()

	menus := menuRepo{menu: &model.Menu{ID: 1, Meal: model.MealLunch, Date: "2024-01-15"}}
	edges := dishIDs{1: {10, 20}}
	c := NewDishClient(ClientConfig{BaseURL: server.URL + "/wrong-prefix"})
	r := compose.NewMenuResolver(menus, edges, c, 2, slog.New(slog.DiscardHandler))

	got, err := r.ResolveMenu(context.Background(), 1)
	if !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	if got != nil {
		t.Errorf("composition = %+v, want nil", got)
	}
}

func TestDishClientServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewDishClient(ClientConfig{BaseURL: server.URL})
	if _, err := c.Dish(context.Background(), 1); !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestDishClientUnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewDishClient(ClientConfig{BaseURL: url})
	if _, err := c.Dish(context.Background(), 1); !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestDishClientTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewDishClient(ClientConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	if _, err := c.Dish(context.Background(), 1); !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestDishClientCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewDishClient(ClientConfig{BaseURL: server.URL})
	_, err := c.Dish(ctx, 1)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDishClientBadPayloadIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewDishClient(ClientConfig{BaseURL: server.URL})
	if _, err := c.Dish(context.Background(), 1); !apperr.IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestUserClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/internal/users/7":
			json.NewEncoder(w).Encode(model.User{ID: 7, Name: "oleg"})
		case r.URL.Path == "/internal/users" && r.URL.Query().Get("name") == "anna maria":
			json.NewEncoder(w).Encode(model.User{ID: 8, Name: "anna maria"})
		default:
			w.Header().Set(PeerHeader, "user")
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewUserClient(ClientConfig{BaseURL: server.URL})
	ctx := context.Background()

	u, err := c.UserByID(ctx, 7)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if u.Name != "oleg" {
		t.Errorf("name = %q", u.Name)
	}

	u, err = c.UserByName(ctx, "anna maria")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if u.ID != 8 {
		t.Errorf("id = %d, want 8", u.ID)
	}

	if _, err := c.UserByID(ctx, 99); !apperr.IsNotFound(err) {
		t.Errorf("missing user err = %v, want not found", err)
	}
	if _, err := c.UserByName(ctx, "nobody"); !apperr.IsNotFound(err) {
		t.Errorf("missing name err = %v, want not found", err)
	}
}

type menuRepo struct{ menu *model.Menu }

func (m menuRepo) GetByID(_ context.Context, id int64) (*model.Menu, error) {
	if m.menu != nil && m.menu.ID == id {
		return m.menu, nil
	}
	return nil, nil
}

func (m menuRepo) FindByKey(context.Context, model.MenuKey) (*model.Menu, error) {
	return nil, nil
}

type dishIDs map[int64][]int64

func (d dishIDs) DishIDs(_ context.Context, menuID int64) ([]int64, error) {
	return d[menuID], nil
}
