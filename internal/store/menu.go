package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/database"
	"github.com/dukerupert/nutrimenu/internal/model"
)

type MenuStore struct {
	db *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

func scanMenu(scanner interface{ Scan(...any) error }) (*model.Menu, error) {
	var m model.Menu
	var userID sql.NullInt64
	var meal string

	err := scanner.Scan(&m.ID, &m.Date, &meal, &userID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	m.Meal = model.Meal(meal)
	if userID.Valid {
		m.UserID = &userID.Int64
	}
	return &m, nil
}

const menuCols = `id, date, meal, user_id, created_at, updated_at`

func nullUserID(userID *int64) sql.NullInt64 {
	if userID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *userID, Valid: true}
}

// Create inserts a menu. A concurrent writer that wins the race on the same
// key surfaces here as a Conflict from the unique index.
func (s *MenuStore) Create(ctx context.Context, key model.MenuKey) (*model.Menu, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO menus (date, meal, user_id) VALUES (?, ?, ?)`,
		key.Date, string(key.Meal), nullUserID(key.UserID),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("menu with given key already exists")
		}
		return nil, fmt.Errorf("insert menu: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MenuStore) GetByID(ctx context.Context, id int64) (*model.Menu, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+menuCols+` FROM menus WHERE id = ?`, id)
	m, err := scanMenu(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	return m, nil
}

// FindByKey looks a menu up by its exact (meal, date, user_id) triple. A nil
// user id matches only global menus.
func (s *MenuStore) FindByKey(ctx context.Context, key model.MenuKey) (*model.Menu, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+menuCols+` FROM menus WHERE meal = ? AND date = ? AND user_id IS ?`,
		string(key.Meal), key.Date, nullUserID(key.UserID),
	)
	m, err := scanMenu(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find menu by key: %w", err)
	}
	return m, nil
}

func (s *MenuStore) List(ctx context.Context, limit, offset int) ([]model.Menu, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+menuCols+` FROM menus ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()
	return collectMenus(rows)
}

func (s *MenuStore) ListByUser(ctx context.Context, userID int64) ([]model.Menu, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+menuCols+` FROM menus WHERE user_id = ? ORDER BY date ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menus by user: %w", err)
	}
	defer rows.Close()
	return collectMenus(rows)
}

func collectMenus(rows *sql.Rows) ([]model.Menu, error) {
	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

func (s *MenuStore) Update(ctx context.Context, id int64, key model.MenuKey) (*model.Menu, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE menus SET date = ?, meal = ?, user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		key.Date, string(key.Meal), nullUserID(key.UserID), id,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("menu with given new key already exists")
		}
		return nil, fmt.Errorf("update menu: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the menu and, by cascade, its MenuDish edges.
func (s *MenuStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return nil
}
