package compose

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/metrics"
	"github.com/dukerupert/nutrimenu/internal/model"
	"github.com/dukerupert/nutrimenu/internal/nutrition"
)

// DefaultFanOut bounds concurrent dish lookups per menu when no limit is
// configured.
const DefaultFanOut = 8

// MenuResolver turns a menu id into its resolved dishes and nutrient total.
type MenuResolver struct {
	menus  MenuRepository
	edges  DishIDReader
	dishes DishLookup
	fanOut int
	logger *slog.Logger
}

func NewMenuResolver(menus MenuRepository, edges DishIDReader, dishes DishLookup, fanOut int, logger *slog.Logger) *MenuResolver {
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &MenuResolver{menus: menus, edges: edges, dishes: dishes, fanOut: fanOut, logger: logger}
}

// ResolveMenu loads the menu and resolves it with Compose.
func (r *MenuResolver) ResolveMenu(ctx context.Context, menuID int64) (*model.MenuComposition, error) {
	menu, err := r.menus.GetByID(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	if menu == nil {
		return nil, apperr.NotFound("menu with id %d was not found", menuID)
	}
	return r.Compose(ctx, menu)
}

// Compose looks up every dish of an already loaded menu concurrently and sums
// their totals without rescaling.
//
// A dish that is not found becomes a zero-valued placeholder and the menu
// still resolves. Any other lookup failure, ServiceUnavailable included,
// cancels the outstanding lookups and fails the whole call.
func (r *MenuResolver) Compose(ctx context.Context, menu *model.Menu) (*model.MenuComposition, error) {
	ids, err := r.edges.DishIDs(ctx, menu.ID)
	if err != nil {
		return nil, fmt.Errorf("read menu composition: %w", err)
	}

	dishes := make([]model.DishSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			d, err := r.dishes.Dish(gctx, id)
			if apperr.IsNotFound(err) {
				r.logger.Warn("dish in menu not found, using placeholder", "menu_id", menu.ID, "dish_id", id)
				metrics.RecordPlaceholder()
				dishes[i] = model.PlaceholderDish(id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("lookup dish %d: %w", id, err)
			}
			dishes[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := make([]model.Nutrients, len(dishes))
	missing := 0
	for i, d := range dishes {
		totals[i] = d.Nutrients
		if d.IsPlaceholder() {
			missing++
		}
	}

	return &model.MenuComposition{
		Menu:          *menu,
		Dishes:        dishes,
		Total:         nutrition.SumTotals(totals),
		MissingDishes: missing,
	}, nil
}
