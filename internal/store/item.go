package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/database"
	"github.com/dukerupert/nutrimenu/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	err := scanner.Scan(
		&it.ID, &it.Name, &it.Calories, &it.Carbs, &it.Protein, &it.Fats,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

const itemCols = `id, name, calories, carbs, protein, fats, created_at, updated_at`

func (s *ItemStore) Create(ctx context.Context, name string, n model.Nutrients) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, calories, carbs, protein, fats) VALUES (?, ?, ?, ?, ?)`,
		name, n.Calories, n.Carbs, n.Protein, n.Fats,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("item with name %s already exists", name)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (s *ItemStore) GetByName(ctx context.Context, name string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE name = ?`, name)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by name: %w", err)
	}
	return it, nil
}

func (s *ItemStore) List(ctx context.Context, limit, offset int) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemCols+` FROM items ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(ctx context.Context, id int64, name string, n model.Nutrients) (*model.Item, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, calories = ?, carbs = ?, protein = ?, fats = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, n.Calories, n.Carbs, n.Protein, n.Fats, id,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("item with name %s already exists", name)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the item. ItemDish edges that reference it are left in
// place.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *ItemStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
