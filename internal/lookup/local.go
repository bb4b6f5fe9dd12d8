// Package lookup resolves items, dishes and users either from this
// service's own storage or from a peer service over HTTP. Both flavours
// satisfy the compose lookup interfaces, so the resolvers do not care which
// side of a service boundary an entity lives on.
package lookup

import (
	"context"
	"errors"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/metrics"
	"github.com/dukerupert/nutrimenu/internal/model"
)

const (
	sourceLocal  = "local"
	sourceRemote = "remote"
)

// outcome maps a lookup error onto the metrics outcome label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.IsNotFound(err):
		return "not_found"
	case apperr.IsUnavailable(err):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}

type itemGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Item, error)
}

// LocalItems serves items from the item store.
type LocalItems struct {
	items itemGetter
}

func NewLocalItems(items itemGetter) *LocalItems {
	return &LocalItems{items: items}
}

func (l *LocalItems) Item(ctx context.Context, id int64) (*model.Item, error) {
	item, err := l.items.GetByID(ctx, id)
	if err == nil && item == nil {
		err = apperr.NotFound("item with id %d was not found", id)
	}
	metrics.RecordLookup("item", sourceLocal, outcome(err))
	if err != nil {
		return nil, err
	}
	return item, nil
}

// LocalDishes serves dish summaries computed by a DishResolver in-process.
type LocalDishes struct {
	resolver *compose.DishResolver
}

func NewLocalDishes(resolver *compose.DishResolver) *LocalDishes {
	return &LocalDishes{resolver: resolver}
}

func (l *LocalDishes) Dish(ctx context.Context, id int64) (*model.DishSummary, error) {
	s, err := l.resolver.Summary(ctx, id)
	metrics.RecordLookup("dish", sourceLocal, outcome(err))
	return s, err
}

type userFinder interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
}

// LocalUsers serves users from the user store.
type LocalUsers struct {
	users userFinder
}

func NewLocalUsers(users userFinder) *LocalUsers {
	return &LocalUsers{users: users}
}

func (l *LocalUsers) UserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := l.users.GetByID(ctx, id)
	if err == nil && u == nil {
		err = apperr.NotFound("user with id %d was not found", id)
	}
	metrics.RecordLookup("user", sourceLocal, outcome(err))
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (l *LocalUsers) UserByName(ctx context.Context, name string) (*model.User, error) {
	u, err := l.users.GetByName(ctx, name)
	if err == nil && u == nil {
		err = apperr.NotFound("user with name %s was not found", name)
	}
	metrics.RecordLookup("user", sourceLocal, outcome(err))
	if err != nil {
		return nil, err
	}
	return u, nil
}

var (
	_ compose.ItemLookup = (*LocalItems)(nil)
	_ compose.DishLookup = (*LocalDishes)(nil)
	_ compose.UserLookup = (*LocalUsers)(nil)
)
