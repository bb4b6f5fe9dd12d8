package compose

import (
	"context"
	"fmt"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/model"
)

// Guard checks uniqueness before a write so callers get a specific error.
// The checks race with concurrent writers; the unique indexes in storage are
// what actually enforce the invariants, and the stores translate their
// violations into the same Conflict errors.
type Guard struct {
	menus MenuRepository
	edges EdgeChecker
}

func NewGuard(menus MenuRepository, edges EdgeChecker) *Guard {
	return &Guard{menus: menus, edges: edges}
}

// CheckCreateMenu fails with Conflict if a menu already holds key.
func (g *Guard) CheckCreateMenu(ctx context.Context, key model.MenuKey) error {
	existing, err := g.menus.FindByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("find menu by key: %w", err)
	}
	if existing != nil {
		return apperr.Conflict("menu with given key already exists")
	}
	return nil
}

// CheckUpdateMenu fails with NotFound if menuID does not exist and with
// Conflict if a different menu already holds the new key. Keeping the
// current key is allowed.
func (g *Guard) CheckUpdateMenu(ctx context.Context, menuID int64, key model.MenuKey) error {
	current, err := g.menus.GetByID(ctx, menuID)
	if err != nil {
		return fmt.Errorf("get menu: %w", err)
	}
	if current == nil {
		return apperr.NotFound("menu with id %d was not found", menuID)
	}
	if current.Key().Equal(key) {
		return nil
	}

	holder, err := g.menus.FindByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("find menu by key: %w", err)
	}
	if holder != nil && holder.ID != menuID {
		return apperr.Conflict("menu with given new key already exists")
	}
	return nil
}

// CheckAddComposition fails with Conflict if the edge already exists. The
// same reject policy applies to ItemDish and MenuDish edges; changing the
// grams of an ItemDish edge is a separate update.
func (g *Guard) CheckAddComposition(ctx context.Context, e model.Edge) error {
	exists, err := g.edges.EdgeExists(ctx, e)
	if err != nil {
		return fmt.Errorf("check %s: %w", e.Kind, err)
	}
	if exists {
		return apperr.Conflict("%s already exists", e)
	}
	return nil
}
