// Package catalog provides the read-only product lookup used at order
// creation. Prices and discounts read here are snapshotted into the order's
// line items and never re-synced afterwards.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Entry is the catalog view of one product.
type Entry struct {
	ID       string
	Name     string
	Brand    string
	Model    string
	Image    string
	Price    float64
	Discount float64
}

// Catalog resolves product data by id set.
type Catalog interface {
	// GetByIDs fetches the requested products in one batched query and
	// returns them keyed by product id. Ids absent from the catalog are
	// simply missing from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]Entry, error)
}

// pgCatalog implements Catalog over the products table.
type pgCatalog struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New creates a PostgreSQL-backed catalog lookup.
func New(pool *pgxpool.Pool, logger zerolog.Logger) Catalog {
	return &pgCatalog{
		pool:   pool,
		logger: logger.With().Str("adapter", "catalog").Logger(),
	}
}

// GetByIDs retrieves the requested products in a single query.
func (c *pgCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]Entry, error) {
	entries := make(map[string]Entry, len(ids))
	if len(ids) == 0 {
		return entries, nil
	}

	// Deduplicate so repeated lines do not inflate the ANY() list.
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	query := `
		SELECT id, name, brand, model, COALESCE(image, ''), price, discount
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := c.pool.Query(ctx, query, unique)
	if err != nil {
		c.logger.Error().Err(err).Int("count", len(unique)).Msg("failed to query catalog products")
		return nil, fmt.Errorf("failed to query catalog products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Brand, &e.Model, &e.Image, &e.Price, &e.Discount); err != nil {
			c.logger.Error().Err(err).Msg("failed to scan catalog row")
			return nil, fmt.Errorf("failed to scan catalog product: %w", err)
		}
		entries[e.ID] = e
	}

	if err := rows.Err(); err != nil {
		c.logger.Error().Err(err).Msg("error iterating catalog rows")
		return nil, fmt.Errorf("error iterating catalog products: %w", err)
	}

	return entries, nil
}
