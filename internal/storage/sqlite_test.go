package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesTables(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"products", "notification_log", "schema_migrations"} {
		var name string
		err := db.QueryRowContext(context.Background(), "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stocknotify.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var version, count int
	if err := db.QueryRowContext(ctx, "SELECT MAX(version), COUNT(*) FROM schema_migrations").Scan(&version, &count); err != nil {
		t.Fatalf("querying version: %v", err)
	}
	if version != len(migrations) || count != len(migrations) {
		t.Errorf("expected %d applied migrations, got version=%d count=%d", len(migrations), version, count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	insert := `INSERT INTO products (id, name, sku, stock, low_stock_threshold, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, datetime('now'), datetime('now'))`
	if _, err := db.ExecContext(ctx, insert, "p1", "Widget", "W-1"); err != nil {
		t.Fatalf("seeding product: %v", err)
	}

	_, err = db.ExecContext(ctx, insert, "p2", "Other", "W-1")
	if !isUniqueViolation(err) {
		t.Errorf("duplicate sku: got %v, want unique violation", err)
	}

	_, err = db.ExecContext(ctx, insert, "p1", "Again", nil)
	if !isUniqueViolation(err) {
		t.Errorf("duplicate id: got %v, want unique violation", err)
	}

	_, err = db.ExecContext(ctx, insert, "p3", nil, nil)
	if err == nil || isUniqueViolation(err) {
		t.Errorf("null name: got %v, want a non-unique constraint error", err)
	}

	if isUniqueViolation(errors.New("UNIQUE constraint failed: products.sku")) {
		t.Error("plain error text must not be treated as a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}
