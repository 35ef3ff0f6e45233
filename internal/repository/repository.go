package repository

import (
	"context"
	"time"

	"ordersvc/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderListFilter narrows and orders the order listing. The sort key and
// direction are validated upstream; implementations map them onto a column
// whitelist, never into raw SQL.
type OrderListFilter struct {
	UserID   *uuid.UUID
	Status   *model.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Sort     string
	Order    string
	Limit    int
	Offset   int
}

// OrderRepository defines data access for order headers.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order header within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order header, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves an order header under a row lock so that
	// concurrent read-modify-write sequences on the same order serialize.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// Count returns the number of orders matching the filter.
	Count(ctx context.Context, f OrderListFilter) (int, error)

	// List returns one page of orders matching the filter.
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	// UpdateFields applies a partial column update within the transaction.
	UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error

	// Delete removes the order; line items cascade. Reports whether a row
	// was actually deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// RecomputeTotal re-derives the stored total from the current line
	// items and shipping cost. Must run in the same transaction as any
	// line-item write so readers never observe a stale total.
	RecomputeTotal(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// LineItemRepository defines data access for order line items.
type LineItemRepository interface {
	// CreateBatch inserts the given items within the provided transaction.
	CreateBatch(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// ListByOrder returns the order's items sorted by ascending price.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineItem, error)

	// ListByOrderIDs batch-fetches items for a set of orders in one query,
	// keyed by order id.
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderLineItem, error)

	// GetForUpdate fetches one line under a row lock, or nil when the
	// product is not part of the order.
	GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) (*model.OrderLineItem, error)

	// Insert adds a single line within the transaction.
	Insert(ctx context.Context, tx pgx.Tx, item *model.OrderLineItem) error

	// UpdateFields applies a partial column update within the transaction.
	UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error

	// Delete removes one line within the transaction.
	Delete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) error

	// CountByOrder counts the order's lines within the transaction.
	CountByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int, error)
}

// HistoryRepository defines access to the append-only status audit trail.
type HistoryRepository interface {
	// Insert appends one transition record within the transaction.
	Insert(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error

	// ListByOrder returns an order's transitions, oldest first.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}

// StatsRepository aggregates order and transition metrics. A nil userID
// aggregates across all orders; otherwise the scope is that user's orders.
type StatsRepository interface {
	OrderStats(ctx context.Context, userID *uuid.UUID) (*model.OrderStats, error)
	StatusStats(ctx context.Context, userID *uuid.UUID) (*model.StatusStats, error)
}
