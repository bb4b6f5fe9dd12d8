package compose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/metrics"
	"github.com/dukerupert/nutrimenu/internal/model"
	"github.com/dukerupert/nutrimenu/internal/nutrition"
)

// DishResolver turns a dish id into its resolved items and nutrient total.
type DishResolver struct {
	dishes DishRepository
	edges  ItemWeightReader
	items  ItemLookup
	logger *slog.Logger
}

func NewDishResolver(dishes DishRepository, edges ItemWeightReader, items ItemLookup, logger *slog.Logger) *DishResolver {
	return &DishResolver{dishes: dishes, edges: edges, items: items, logger: logger}
}

// ResolveDish reads the dish's edges once and resolves each item. Edges whose
// item no longer exists are omitted from both the item list and the total.
func (r *DishResolver) ResolveDish(ctx context.Context, dishID int64) (*model.DishComposition, error) {
	dish, err := r.dishes.GetByID(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}
	if dish == nil {
		return nil, apperr.NotFound("dish with id %d was not found", dishID)
	}

	weights, err := r.edges.ItemWeights(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("read dish composition: %w", err)
	}

	items := make([]model.ItemPortion, 0, len(weights))
	portions := make([]nutrition.Portion, 0, len(weights))
	for _, w := range weights {
		item, err := r.items.Item(ctx, w.ItemID)
		if apperr.IsNotFound(err) {
			r.logger.Debug("skipping dangling item edge", "dish_id", dishID, "item_id", w.ItemID)
			metrics.RecordDanglingItem()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup item %d: %w", w.ItemID, err)
		}
		items = append(items, model.ItemPortion{Item: *item, Grams: w.Grams})
		portions = append(portions, nutrition.Portion{Per100g: item.Nutrients, Grams: w.Grams})
	}

	return &model.DishComposition{
		Dish:  *dish,
		Items: items,
		Total: nutrition.SumWeighted(portions),
	}, nil
}

// Summary resolves the dish and flattens it into a DishSummary.
func (r *DishResolver) Summary(ctx context.Context, dishID int64) (*model.DishSummary, error) {
	c, err := r.ResolveDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	s := c.Summary()
	return &s, nil
}
