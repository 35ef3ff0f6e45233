package repository

import (
	"context"
	"fmt"
	"sort"

	"ordersvc/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Line items are always returned cheapest first; the subtotal is computed
// in SQL with the same rounding the total recomputation uses.
const lineItemColumns = `
	id, order_id, product_id, name, brand, model, image,
	price, discount, quantity,
	round(price * quantity * (1 - discount / 100), 2) AS subtotal
`

// lineItemRepository implements LineItemRepository using PostgreSQL.
type lineItemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLineItemRepository creates a new PostgreSQL-backed line-item repository.
func NewLineItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) LineItemRepository {
	return &lineItemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "line_item").Logger(),
	}
}

func scanLineItem(row pgx.Row) (*model.OrderLineItem, error) {
	var li model.OrderLineItem
	err := row.Scan(
		&li.ID, &li.OrderID, &li.ProductID, &li.Name, &li.Brand, &li.Model, &li.Image,
		&li.Price, &li.Discount, &li.Quantity, &li.Subtotal,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

// CreateBatch inserts multiple line items within the provided transaction.
func (r *lineItemRepository) CreateBatch(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, name, brand, model, image, price, discount, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.Name, item.Brand, item.Model, item.Image,
			item.Price, item.Discount, item.Quantity,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create line item")
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("line items created successfully")

	return nil
}

// ListByOrder returns the order's items sorted by ascending price.
func (r *lineItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY price ASC, discount DESC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query line items")
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderLineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan line item row")
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating line item rows")
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// ListByOrderIDs batch-fetches the items of many orders in one query.
func (r *lineItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderLineItem, error) {
	grouped := make(map[uuid.UUID][]model.OrderLineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}

	query := `SELECT ` + lineItemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY price ASC, discount DESC`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orderIDs)).Msg("failed to batch query line items")
		return nil, fmt.Errorf("failed to batch query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan line item row")
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		grouped[item.OrderID] = append(grouped[item.OrderID], *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating line item rows")
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return grouped, nil
}

// GetForUpdate fetches one line under a row lock so that concurrent adds of
// the same product merge instead of racing.
func (r *lineItemRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) (*model.OrderLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM order_items WHERE order_id = $1 AND product_id = $2 FOR UPDATE`

	item, err := scanLineItem(tx.QueryRow(ctx, query, orderID, productID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("product_id", productID).
			Msg("failed to lock line item")
		return nil, fmt.Errorf("failed to lock line item: %w", err)
	}
	return item, nil
}

// Insert adds a single line within the transaction.
func (r *lineItemRepository) Insert(ctx context.Context, tx pgx.Tx, item *model.OrderLineItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, name, brand, model, image, price, discount, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.Name, item.Brand, item.Model, item.Image,
		item.Price, item.Discount, item.Quantity,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", item.OrderID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to insert line item")
		return fmt.Errorf("failed to insert line item: %w", err)
	}

	return nil
}

// UpdateFields applies a partial column update within the transaction.
func (r *lineItemRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := ""
	args := make([]any, 0, len(fields)+1)
	for i, col := range cols {
		if i > 0 {
			set += ", "
		}
		args = append(args, fields[col])
		set += fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE order_items SET %s WHERE id = $%d", set, len(args))
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		r.logger.Error().Err(err).Str("line_item_id", id.String()).Msg("failed to update line item")
		return fmt.Errorf("failed to update line item: %w", err)
	}

	return nil
}

// Delete removes one line within the transaction.
func (r *lineItemRepository) Delete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) error {
	_, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1 AND product_id = $2", orderID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("product_id", productID).
			Msg("failed to delete line item")
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	return nil
}

// CountByOrder counts the order's lines within the transaction.
func (r *lineItemRepository) CountByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM order_items WHERE order_id = $1", orderID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to count line items")
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}
	return count, nil
}
