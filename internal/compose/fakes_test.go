package compose

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/model"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func int64Ptr(v int64) *int64 { return &v }

type fakeDishes map[int64]*model.Dish

func (f fakeDishes) GetByID(_ context.Context, id int64) (*model.Dish, error) {
	return f[id], nil
}

type fakeItems map[int64]*model.Item

func (f fakeItems) Item(_ context.Context, id int64) (*model.Item, error) {
	it, ok := f[id]
	if !ok {
		return nil, apperr.NotFound("item with id %d was not found", id)
	}
	return it, nil
}

type fakeEdges struct {
	weights map[int64][]model.ItemWeight
	dishIDs map[int64][]int64
	present map[model.Edge]bool
}

func (f *fakeEdges) ItemWeights(_ context.Context, dishID int64) ([]model.ItemWeight, error) {
	return f.weights[dishID], nil
}

func (f *fakeEdges) DishIDs(_ context.Context, menuID int64) ([]int64, error) {
	return f.dishIDs[menuID], nil
}

func (f *fakeEdges) EdgeExists(_ context.Context, e model.Edge) (bool, error) {
	return f.present[e], nil
}

type fakeMenus struct {
	byID []*model.Menu
}

func (f *fakeMenus) GetByID(_ context.Context, id int64) (*model.Menu, error) {
	for _, m := range f.byID {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMenus) FindByKey(_ context.Context, key model.MenuKey) (*model.Menu, error) {
	for _, m := range f.byID {
		if m.Key().Equal(key) {
			return m, nil
		}
	}
	return nil, nil
}

// fakeDishLookup serves summaries from a map. Ids listed in fail return the
// given error instead. It tracks peak concurrency.
type fakeDishLookup struct {
	dishes map[int64]model.DishSummary
	fail   map[int64]error
	delay  time.Duration

	mu       sync.Mutex
	calls    []int64
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeDishLookup) Dish(ctx context.Context, id int64) (*model.DishSummary, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	d, ok := f.dishes[id]
	if !ok {
		return nil, apperr.NotFound("dish with id %d was not found", id)
	}
	return &d, nil
}
