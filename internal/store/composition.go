package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/database"
	"github.com/dukerupert/nutrimenu/internal/model"
)

// CompositionStore persists ItemDish and MenuDish membership edges.
type CompositionStore struct {
	db *sql.DB
}

func NewCompositionStore(db *sql.DB) *CompositionStore {
	return &CompositionStore{db: db}
}

// ItemWeights returns every ItemDish edge of the dish in a single read,
// including edges whose item has since been deleted.
func (s *CompositionStore) ItemWeights(ctx context.Context, dishID int64) ([]model.ItemWeight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, grams FROM item_dishes WHERE dish_id = ? ORDER BY item_id ASC`,
		dishID,
	)
	if err != nil {
		return nil, fmt.Errorf("list item weights: %w", err)
	}
	defer rows.Close()

	var weights []model.ItemWeight
	for rows.Next() {
		var w model.ItemWeight
		if err := rows.Scan(&w.ItemID, &w.Grams); err != nil {
			return nil, fmt.Errorf("scan item weight: %w", err)
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// DishIDs returns the ids of every dish composed into the menu.
func (s *CompositionStore) DishIDs(ctx context.Context, menuID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dish_id FROM menu_dishes WHERE menu_id = ? ORDER BY dish_id ASC`,
		menuID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu dishes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dish id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *CompositionStore) EdgeExists(ctx context.Context, e model.Edge) (bool, error) {
	var query string
	switch e.Kind {
	case model.EdgeItemDish:
		query = `SELECT COUNT(*) FROM item_dishes WHERE dish_id = ? AND item_id = ?`
	case model.EdgeMenuDish:
		query = `SELECT COUNT(*) FROM menu_dishes WHERE menu_id = ? AND dish_id = ?`
	default:
		return false, fmt.Errorf("unknown edge kind %q", e.Kind)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, e.ParentID, e.ChildID).Scan(&n); err != nil {
		return false, fmt.Errorf("edge exists: %w", err)
	}
	return n > 0, nil
}

// InsertEdge adds a membership. grams is ignored for MenuDish edges. An
// existing pair is rejected with a Conflict error by the primary key.
func (s *CompositionStore) InsertEdge(ctx context.Context, e model.Edge, grams int) error {
	var err error
	switch e.Kind {
	case model.EdgeItemDish:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO item_dishes (item_id, dish_id, grams) VALUES (?, ?, ?)`,
			e.ChildID, e.ParentID, grams,
		)
	case model.EdgeMenuDish:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO menu_dishes (menu_id, dish_id) VALUES (?, ?)`,
			e.ParentID, e.ChildID,
		)
	default:
		return fmt.Errorf("unknown edge kind %q", e.Kind)
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("%s already exists", e)
		}
		return fmt.Errorf("insert %s: %w", e.Kind, err)
	}
	return nil
}

// UpdateGrams changes the weight of an existing ItemDish edge. It reports
// whether the edge existed.
func (s *CompositionStore) UpdateGrams(ctx context.Context, itemID, dishID int64, grams int) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE item_dishes SET grams = ? WHERE item_id = ? AND dish_id = ?`,
		grams, itemID, dishID,
	)
	if err != nil {
		return false, fmt.Errorf("update grams: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteEdge removes a membership and reports whether it existed.
func (s *CompositionStore) DeleteEdge(ctx context.Context, e model.Edge) (bool, error) {
	var result sql.Result
	var err error
	switch e.Kind {
	case model.EdgeItemDish:
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM item_dishes WHERE item_id = ? AND dish_id = ?`,
			e.ChildID, e.ParentID,
		)
	case model.EdgeMenuDish:
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM menu_dishes WHERE menu_id = ? AND dish_id = ?`,
			e.ParentID, e.ChildID,
		)
	default:
		return false, fmt.Errorf("unknown edge kind %q", e.Kind)
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", e.Kind, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
