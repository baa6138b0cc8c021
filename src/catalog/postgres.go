package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads inventory from a Postgres catalog_items table.
type PostgresSource struct {
	DB *pgxpool.Pool
}

// NewPostgresSource connects to Postgres and returns a catalog source.
func NewPostgresSource(ctx context.Context, connStr string) (*PostgresSource, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresSource{DB: db}, nil
}

// CreateSchema creates the catalog table if it does not exist.
func (ps *PostgresSource) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
                CREATE TABLE IF NOT EXISTS catalog_items (
                        sku         TEXT PRIMARY KEY,
                        name        TEXT NOT NULL,
                        description TEXT NOT NULL DEFAULT '',
                        unit_price  DOUBLE PRECISION NOT NULL DEFAULT 0
                );
        `)
	return err
}

// Item returns the inventory row for a SKU. A missing row is not an error.
func (ps *PostgresSource) Item(ctx context.Context, sku string) (Item, bool, error) {
	if ps == nil || ps.DB == nil {
		return Item{}, false, nil
	}
	var item Item
	err := ps.DB.QueryRow(ctx, `
                SELECT sku, name, description, unit_price
                FROM catalog_items
                WHERE sku = $1;
        `, sku).Scan(&item.ID, &item.Name, &item.Description, &item.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, err
	}
	return item, true, nil
}

// Items returns the full inventory ordered by SKU.
func (ps *PostgresSource) Items(ctx context.Context) ([]Item, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `
                SELECT sku, name, description, unit_price
                FROM catalog_items
                ORDER BY sku;
        `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close releases the underlying connection pool.
func (ps *PostgresSource) Close() {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
}

var _ Source = (*PostgresSource)(nil)
