// Package compose resolves dish and menu compositions into nutrient totals
// and guards the uniqueness invariants on menus and composition edges.
//
// Collaborators are injected as small interfaces so the same resolvers run
// against local stores or against lookups that cross a service boundary.
package compose

import (
	"context"

	"github.com/dukerupert/nutrimenu/internal/model"
)

// DishRepository finds dishes owned by this service. GetByID returns
// (nil, nil) when the dish does not exist.
type DishRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Dish, error)
}

// MenuRepository finds menus. Both methods return (nil, nil) when nothing
// matches.
type MenuRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Menu, error)
	FindByKey(ctx context.Context, key model.MenuKey) (*model.Menu, error)
}

// ItemWeightReader reads the ItemDish edges of a dish.
type ItemWeightReader interface {
	ItemWeights(ctx context.Context, dishID int64) ([]model.ItemWeight, error)
}

// DishIDReader reads the MenuDish edges of a menu.
type DishIDReader interface {
	DishIDs(ctx context.Context, menuID int64) ([]int64, error)
}

// EdgeChecker reports whether a composition edge already exists.
type EdgeChecker interface {
	EdgeExists(ctx context.Context, e model.Edge) (bool, error)
}

// ItemLookup resolves an item. A missing item is an apperr NotFound error.
type ItemLookup interface {
	Item(ctx context.Context, id int64) (*model.Item, error)
}

// DishLookup resolves a dish summary, locally or across a service boundary.
// A missing dish is an apperr NotFound error; an unreachable dish service is
// an apperr ServiceUnavailable error.
type DishLookup interface {
	Dish(ctx context.Context, id int64) (*model.DishSummary, error)
}

// UserLookup resolves users. Errors follow DishLookup.
type UserLookup interface {
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByName(ctx context.Context, name string) (*model.User, error)
}
