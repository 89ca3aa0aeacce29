package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

const productColumns = `id, name, sku, stock, low_stock_threshold, cost_price, updated_at`

// SQLiteProductStore implements ProductStore backed by SQLite.
type SQLiteProductStore struct {
	db *sql.DB
}

// NewSQLiteProductStore returns a new SQLiteProductStore.
func NewSQLiteProductStore(db *sql.DB) *SQLiteProductStore {
	return &SQLiteProductStore{db: db}
}

// ListProducts returns all products ordered by name.
func (s *SQLiteProductStore) ListProducts(ctx context.Context) ([]*inventory.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	return scanProducts(rows)
}

// ListLowStock returns products at or below their low-stock threshold,
// lowest stock first.
func (s *SQLiteProductStore) ListLowStock(ctx context.Context) ([]*inventory.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE stock <= low_stock_threshold
		ORDER BY stock, name`)
	if err != nil {
		return nil, fmt.Errorf("listing low-stock products: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	return scanProducts(rows)
}

// GetProduct returns a product by ID, or nil if not found.
func (s *SQLiteProductStore) GetProduct(ctx context.Context, id string) (*inventory.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return p, nil
}

// CreateProduct inserts a new product.
func (s *SQLiteProductStore) CreateProduct(ctx context.Context, p *inventory.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, stock, low_stock_threshold, cost_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullableSKU(p.SKU), p.Stock, p.LowStockThreshold,
		nullableCost(p.CostPrice), now, now,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("creating product: sku %q: %w", p.SKUOr(""), ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the mutable fields of an existing product.
func (s *SQLiteProductStore) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			name = ?, sku = ?, stock = ?, low_stock_threshold = ?,
			cost_price = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, nullableSKU(p.SKU), p.Stock, p.LowStockThreshold,
		nullableCost(p.CostPrice), p.UpdatedAt, p.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("updating product %q: sku %q: %w", p.ID, p.SKUOr(""), ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	return requireAffected(res, "product", p.ID)
}

// DeleteProduct removes a product.
func (s *SQLiteProductStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	return requireAffected(res, "product", id)
}

// AdjustStock adds delta to the stored stock and returns the updated product.
func (s *SQLiteProductStore) AdjustStock(ctx context.Context, id string, delta int) (*inventory.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin stock adjustment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting stock for product %q: %w", id, err)
	}
	if err := requireAffected(res, "product", id); err != nil {
		return nil, err
	}

	p, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("reading product %q after stock adjustment: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stock adjustment: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*inventory.Product, error) {
	var (
		p    inventory.Product
		sku  sql.NullString
		cost decimal.NullDecimal
	)
	if err := row.Scan(&p.ID, &p.Name, &sku, &p.Stock, &p.LowStockThreshold, &cost, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if sku.Valid {
		p.SKU = &sku.String
	}
	if cost.Valid {
		p.CostPrice = &cost.Decimal
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*inventory.Product, error) {
	products := make([]*inventory.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}
	return products, nil
}

func nullableSKU(sku *string) sql.NullString {
	if sku == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *sku, Valid: true}
}

// nullableCost stores the decimal as its exact string form.
func nullableCost(cost *decimal.Decimal) sql.NullString {
	if cost == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: cost.String(), Valid: true}
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for %s %q: %w", resource, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", resource, id, ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary key
// constraint failure. The driver enables extended result codes.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
