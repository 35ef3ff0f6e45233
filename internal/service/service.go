package service

import (
	"context"

	"ordersvc/internal/model"

	"github.com/google/uuid"
)

// OrderService defines operations on whole orders.
type OrderService interface {
	// Create places a new order for the requested user. Non-admin callers
	// may only create orders for themselves.
	Create(ctx context.Context, p model.Principal, req *model.CreateOrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its line items. Owner or admin only.
	GetByID(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error)

	// List returns a page of orders. Non-admin callers are always scoped
	// to their own orders.
	List(ctx context.Context, p model.Principal, q model.ListOrdersQuery) (*model.OrdersPage, error)

	// Update applies a partial update to an order's own fields. Owner or
	// admin only; status changes inside the payload are admin only.
	Update(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error)

	// Delete removes an order and its line items. Admin only.
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) error
}

// StatusService drives the order lifecycle state machine and its audit trail.
type StatusService interface {
	// Transition moves an order to a new status. Admin only.
	Transition(ctx context.Context, p model.Principal, id uuid.UUID, req *model.TransitionRequest) (*model.TransitionResult, error)

	// Cancel moves an order to cancelled on behalf of the owner or an
	// admin, following the same transition table.
	Cancel(ctx context.Context, p model.Principal, id uuid.UUID, req *model.CancelOrderRequest) (*model.Order, error)

	// History returns an order's transitions, oldest first. Owner or
	// admin only.
	History(ctx context.Context, p model.Principal, id uuid.UUID) ([]model.OrderStatusHistory, error)

	// Stats aggregates order counts and spend, scoped to the caller's own
	// orders unless the caller is an admin.
	Stats(ctx context.Context, p model.Principal) (*model.OrderStats, error)

	// StatusStats aggregates per-status, monthly and timing metrics with
	// the same scoping rule as Stats.
	StatusStats(ctx context.Context, p model.Principal) (*model.StatusStats, error)
}

// LineItemService mutates the line items of an existing order.
type LineItemService interface {
	// List returns an order's line items with aggregate counters.
	List(ctx context.Context, p model.Principal, orderID uuid.UUID) (*model.LineItemsSummary, error)

	// Add inserts a new line or merges quantity into an existing line for
	// the same product.
	Add(ctx context.Context, p model.Principal, orderID uuid.UUID, req *model.AddLineItemRequest) (*model.Order, error)

	// Update partially updates one line's quantity, price or discount.
	Update(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string, req *model.UpdateLineItemRequest) (*model.Order, error)

	// Remove deletes one line. The order's last remaining line cannot be
	// removed.
	Remove(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string) (*model.Order, error)
}
