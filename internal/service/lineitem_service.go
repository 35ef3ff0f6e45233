package service

import (
	"context"
	"fmt"

	"ordersvc/internal/catalog"
	"ordersvc/internal/model"
	"ordersvc/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// lineItemService implements LineItemService.
type lineItemService struct {
	orderRepo repository.OrderRepository
	lineRepo  repository.LineItemRepository
	catalog   catalog.Catalog
	logger    zerolog.Logger
}

// NewLineItemService creates a new line-item service.
func NewLineItemService(
	orderRepo repository.OrderRepository,
	lineRepo repository.LineItemRepository,
	cat catalog.Catalog,
	logger zerolog.Logger,
) LineItemService {
	return &lineItemService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		catalog:   cat,
		logger:    logger.With().Str("service", "line_item").Logger(),
	}
}

// List returns an order's line items with aggregate counters.
func (s *lineItemService) List(ctx context.Context, p model.Principal, orderID uuid.UUID) (*model.LineItemsSummary, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.UserID) {
		return nil, model.ForbiddenError("access to this order is not allowed")
	}

	items, err := s.lineRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	summary := &model.LineItemsSummary{Data: items, LineCount: len(items)}
	subtotal := decimal.Zero
	for _, item := range items {
		summary.ItemCount += item.Quantity
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Subtotal))
	}
	summary.Subtotal, _ = subtotal.Round(2).Float64()
	if summary.Data == nil {
		summary.Data = []model.OrderLineItem{}
	}

	return summary, nil
}

// lockMutableOrder loads the order under a row lock and checks the caller
// may mutate its contents. The order must still be in process.
func (s *lineItemService) lockMutableOrder(ctx context.Context, tx pgx.Tx, p model.Principal, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.UserID) {
		return nil, model.ForbiddenError("access to this order is not allowed")
	}
	if !order.Status.IsMutable() {
		return nil, model.ErrOrderNotMutable
	}
	return order, nil
}

// reload returns the refreshed order with its items after a mutation.
func (s *lineItemService) reload(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	items, err := s.lineRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items
	return order, nil
}

// Add inserts a new line or merges quantity into an existing line.
func (s *lineItemService) Add(ctx context.Context, p model.Principal, orderID uuid.UUID, req *model.AddLineItemRequest) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = s.lockMutableOrder(ctx, tx, p, orderID); err != nil {
		return nil, err
	}

	// The existing line is locked so two concurrent adds of the same
	// product merge sequentially instead of losing one increment.
	var existing *model.OrderLineItem
	existing, err = s.lineRepo.GetForUpdate(ctx, tx, orderID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}

	if existing != nil {
		merged := existing.Quantity + req.Quantity
		if merged > 100 {
			err = model.ValidationError("quantity exceeds the per-line maximum of 100").
				WithDetails(map[string]any{"productId": req.ProductID, "quantity": merged})
			return nil, err
		}
		if err = s.lineRepo.UpdateFields(ctx, tx, existing.ID, map[string]any{"quantity": merged}); err != nil {
			return nil, fmt.Errorf("failed to merge line item: %w", err)
		}
	} else {
		var item *model.OrderLineItem
		item, err = s.buildNewLine(ctx, orderID, req)
		if err != nil {
			return nil, err
		}
		if err = s.lineRepo.Insert(ctx, tx, item); err != nil {
			return nil, fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err = s.orderRepo.RecomputeTotal(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Bool("merged", existing != nil).
		Msg("line item added")

	return s.reload(ctx, orderID)
}

// buildNewLine assembles a fresh line from the catalog snapshot when the
// product resolves, falling back to caller-supplied values otherwise. Name
// and price are financially material and are never defaulted silently.
func (s *lineItemService) buildNewLine(ctx context.Context, orderID uuid.UUID, req *model.AddLineItemRequest) (*model.OrderLineItem, error) {
	entries, err := s.catalog.GetByIDs(ctx, []string{req.ProductID})
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID).Msg("catalog lookup failed")
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	item := &model.OrderLineItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}

	if entry, ok := entries[req.ProductID]; ok {
		item.Name = entry.Name
		item.Brand = entry.Brand
		item.Model = entry.Model
		item.Image = entry.Image
		item.Price = entry.Price
		item.Discount = entry.Discount
	}

	// Caller-supplied values override the catalog snapshot.
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Discount != nil {
		item.Discount = *req.Discount
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.Model != nil {
		item.Model = *req.Model
	}
	if req.Image != nil {
		item.Image = *req.Image
	}

	if item.Name == "" || item.Price <= 0 {
		return nil, model.ValidationError("name and a positive price are required for products outside the catalog").
			WithDetails(map[string]any{"productId": req.ProductID, "fields": []string{"name", "price"}})
	}

	// Cosmetic fields get neutral defaults.
	if item.Brand == "" {
		item.Brand = "generic"
	}
	if item.Model == "" {
		item.Model = "standard"
	}

	return item, nil
}

// Update partially updates one line's quantity, price or discount.
func (s *lineItemService) Update(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string, req *model.UpdateLineItemRequest) (*model.Order, error) {
	if req.IsEmpty() {
		return nil, model.ErrNoFieldsToUpdate
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = s.lockMutableOrder(ctx, tx, p, orderID); err != nil {
		return nil, err
	}

	var existing *model.OrderLineItem
	existing, err = s.lineRepo.GetForUpdate(ctx, tx, orderID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}
	if existing == nil {
		err = model.ErrLineItemNotFound
		return nil, err
	}

	fields := map[string]any{}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Discount != nil {
		fields["discount"] = *req.Discount
	}

	if err = s.lineRepo.UpdateFields(ctx, tx, existing.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}
	if err = s.orderRepo.RecomputeTotal(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update line item: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("product_id", productID).
		Msg("line item updated")

	return s.reload(ctx, orderID)
}

// Remove deletes one line unless it is the order's last one.
func (s *lineItemService) Remove(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = s.lockMutableOrder(ctx, tx, p, orderID); err != nil {
		return nil, err
	}

	var existing *model.OrderLineItem
	existing, err = s.lineRepo.GetForUpdate(ctx, tx, orderID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	if existing == nil {
		err = model.ErrLineItemNotFound
		return nil, err
	}

	var count int
	count, err = s.lineRepo.CountByOrder(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	if count <= 1 {
		err = model.ErrLastLineItem
		return nil, err
	}

	if err = s.lineRepo.Delete(ctx, tx, orderID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	if err = s.orderRepo.RecomputeTotal(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("product_id", productID).
		Msg("line item removed")

	return s.reload(ctx, orderID)
}
