package database

import (
	"errors"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"items", "dishes", "item_dishes", "users", "menus", "menu_dishes"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var on int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO items (name) VALUES ('Rice')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = db.Exec(`INSERT INTO items (name) VALUES ('Rice')`)
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestIsUniqueViolationCompositeKey(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO dishes (name) VALUES ('Soup')`); err != nil {
		t.Fatalf("insert dish: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO item_dishes (item_id, dish_id, grams) VALUES (1, 1, 10)`); err != nil {
		t.Fatalf("first edge: %v", err)
	}
	_, err = db.Exec(`INSERT INTO item_dishes (item_id, dish_id, grams) VALUES (1, 1, 20)`)
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestGlobalMenuKeyCollides(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	insert := `INSERT INTO menus (date, meal, user_id) VALUES ('2024-01-15', 'BREAKFAST', ?)`
	if _, err := db.Exec(insert, nil); err != nil {
		t.Fatalf("first global menu: %v", err)
	}
	if _, err := db.Exec(insert, 7); err != nil {
		t.Fatalf("user menu should not collide with global: %v", err)
	}
	if _, err := db.Exec(insert, nil); !IsUniqueViolation(err) {
		t.Errorf("second global menu: got %v, want unique violation", err)
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
	if IsUniqueViolation(errors.New("UNIQUE constraint failed")) {
		t.Error("non-sqlite errors are not violations")
	}
}
