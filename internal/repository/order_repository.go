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

const orderColumns = `
	id, user_id, email, full_name, address, delivery_type,
	geolocation_enabled, latitude, longitude,
	payment_method, card_type, card_brand, card_last4, bank_reference, cash_on_delivery,
	shipping_cost, total, status, created_at, original_delivery_at, delayed_delivery_at
`

// sortColumns whitelists the listing sort keys.
var sortColumns = map[string]string{
	model.SortByDate:   "created_at",
	model.SortByTotal:  "total",
	model.SortByStatus: "status",
}

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order header within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, email, full_name, address, delivery_type,
			geolocation_enabled, latitude, longitude,
			payment_method, card_type, card_brand, card_last4, bank_reference, cash_on_delivery,
			shipping_cost, total, status, created_at, original_delivery_at, delayed_delivery_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.Email, order.FullName, order.Address, order.DeliveryType,
		order.GeoEnabled, order.Latitude, order.Longitude,
		order.PaymentMethod, order.CardType, order.CardBrand, order.CardLast4, order.BankReference, order.CashOnDelivery,
		order.ShippingCost, order.Total, order.Status, order.CreatedAt, order.OriginalDeliveryAt, order.DelayedDeliveryAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Email, &o.FullName, &o.Address, &o.DeliveryType,
		&o.GeoEnabled, &o.Latitude, &o.Longitude,
		&o.PaymentMethod, &o.CardType, &o.CardBrand, &o.CardLast4, &o.BankReference, &o.CashOnDelivery,
		&o.ShippingCost, &o.Total, &o.Status, &o.CreatedAt, &o.OriginalDeliveryAt, &o.DelayedDeliveryAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order header by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return order, nil
}

// GetForUpdate retrieves an order header under a row lock.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// buildFilter renders the filter into a WHERE clause and its arguments.
func buildFilter(f OrderListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if f.UserID != nil {
		args = append(args, *f.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	return where, args
}

// Count returns the number of orders matching the filter.
func (r *orderRepository) Count(ctx context.Context, f OrderListFilter) (int, error) {
	where, args := buildFilter(f)

	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// List returns one page of orders matching the filter.
func (r *orderRepository) List(ctx context.Context, f OrderListFilter) ([]model.Order, error) {
	where, args := buildFilter(f)

	sortCol, ok := sortColumns[f.Sort]
	if !ok {
		sortCol = "created_at"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, f.Limit)
	limitPos := len(args)
	args = append(args, f.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(
		"SELECT %s FROM orders%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		orderColumns, where, sortCol, direction, limitPos, offsetPos,
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateFields applies a partial column update within the transaction.
// Keys are applied in sorted order so generated statements are stable.
func (r *orderRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error {
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

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", set, len(args))
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// Delete removes the order. Line items and history rows cascade.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	}
	return deleted, nil
}

// RecomputeTotal re-derives the stored total from the current line items
// and shipping cost, rounded to 2 decimal places.
func (r *orderRepository) RecomputeTotal(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET total = round(
			COALESCE((
				SELECT SUM(round(price * quantity * (1 - discount / 100), 2))
				FROM order_items
				WHERE order_id = orders.id
			), 0) + shipping_cost, 2)
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to recompute order total")
		return fmt.Errorf("failed to recompute order total: %w", err)
	}

	return nil
}
