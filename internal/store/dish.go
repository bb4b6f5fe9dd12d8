package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/database"
	"github.com/dukerupert/nutrimenu/internal/model"
)

type DishStore struct {
	db *sql.DB
}

func NewDishStore(db *sql.DB) *DishStore {
	return &DishStore{db: db}
}

func scanDish(scanner interface{ Scan(...any) error }) (*model.Dish, error) {
	var d model.Dish
	if err := scanner.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

const dishCols = `id, name, created_at, updated_at`

func (s *DishStore) Create(ctx context.Context, name string) (*model.Dish, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO dishes (name) VALUES (?)`, name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("dish with name %s already exists", name)
		}
		return nil, fmt.Errorf("insert dish: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *DishStore) GetByID(ctx context.Context, id int64) (*model.Dish, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dishCols+` FROM dishes WHERE id = ?`, id)
	d, err := scanDish(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return d, nil
}

func (s *DishStore) GetByName(ctx context.Context, name string) (*model.Dish, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dishCols+` FROM dishes WHERE name = ?`, name)
	d, err := scanDish(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dish by name: %w", err)
	}
	return d, nil
}

func (s *DishStore) List(ctx context.Context, limit, offset int) ([]model.Dish, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dishCols+` FROM dishes ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	var dishes []model.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

func (s *DishStore) Rename(ctx context.Context, id int64, name string) (*model.Dish, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE dishes SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("dish with name %s already exists", name)
		}
		return nil, fmt.Errorf("rename dish: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the dish and, by cascade, its ItemDish edges. MenuDish
// edges pointing at it are kept; menus resolve them to placeholders.
func (s *DishStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}
	return nil
}
