package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ordersvc/internal/catalog"
	"ordersvc/internal/model"
	"ordersvc/internal/pagination"
	"ordersvc/internal/repository"
	"ordersvc/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultDeliveryEstimate is the original delivery estimate stamped on every
// new order.
const defaultDeliveryEstimate = 72 * time.Hour

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	lineRepo  repository.LineItemRepository
	histRepo  repository.HistoryRepository
	catalog   catalog.Catalog
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	lineRepo repository.LineItemRepository,
	histRepo repository.HistoryRepository,
	cat catalog.Catalog,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		histRepo:  histRepo,
		catalog:   cat,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Create places a new order for the requested user.
func (s *orderService) Create(ctx context.Context, p model.Principal, req *model.CreateOrderRequest) (*model.Order, error) {
	if !p.IsAdmin() && req.UserID != p.UserID {
		return nil, model.ForbiddenError("cannot create an order for another user")
	}

	req.ApplyDefaults()
	if err := req.CheckDeliveryRules(); err != nil {
		return nil, err
	}
	if req.PaymentMethod == model.PaymentCard && req.Card == nil {
		return nil, model.ValidationError("card details are required for card payment").
			WithDetails(map[string]any{"fields": []string{"card"}})
	}

	// Requested lines for the same product collapse into one row. The
	// per-line quantity cap applies to the merged quantity.
	quantities := make(map[string]int, len(req.Items))
	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if _, ok := quantities[item.ProductID]; !ok {
			productIDs = append(productIDs, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
		if quantities[item.ProductID] > 100 {
			return nil, model.ValidationError("quantity exceeds the per-line maximum of 100").
				WithDetails(map[string]any{"productId": item.ProductID})
		}
	}

	entries, err := s.catalog.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(productIDs)).Msg("catalog lookup failed")
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	var missing []string
	for _, id := range productIDs {
		if _, ok := entries[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn().Strs("missing_products", missing).Msg("order references unknown products")
		return nil, model.ValidationError("some products do not exist in the catalog").
			WithDetails(map[string]any{"missing_products": missing})
	}

	now := time.Now()
	originalDeliveryAt := now.Add(defaultDeliveryEstimate)

	order := &model.Order{
		ID:                 uuid.New(),
		UserID:             req.UserID,
		Email:              req.Email,
		FullName:           req.FullName,
		Address:            req.Address,
		DeliveryType:       req.DeliveryType,
		GeoEnabled:         req.GeoEnabled,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		PaymentMethod:      req.PaymentMethod,
		CashOnDelivery:     req.CashOnDelivery,
		BankReference:      req.BankReference,
		Status:             model.StatusInProcess,
		CreatedAt:          now,
		OriginalDeliveryAt: &originalDeliveryAt,
	}
	normalizeDelivery(order)
	applyPaymentDetails(order, req.PaymentMethod, req.Card)

	items := make([]model.OrderLineItem, 0, len(productIDs))
	for _, id := range productIDs {
		entry := entries[id]
		item := model.OrderLineItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: id,
			Name:      entry.Name,
			Brand:     entry.Brand,
			Model:     entry.Model,
			Image:     entry.Image,
			Price:     entry.Price,
			Discount:  entry.Discount,
			Quantity:  quantities[id],
		}
		item.Subtotal = item.ComputeSubtotal()
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ProductID < items[j].ProductID
	})

	merchandise := decimal.Zero
	for _, item := range items {
		merchandise = merchandise.Add(decimal.NewFromFloat(item.Subtotal))
	}
	order.ShippingCost = shipping.Cost(order.DeliveryType, order.GeoEnabled, order.Latitude, order.Longitude)
	order.Total, _ = merchandise.Add(decimal.NewFromFloat(order.ShippingCost)).Round(2).Float64()

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.lineRepo.CreateBatch(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID.String()).
		Int("item_count", len(items)).
		Float64("total", order.Total).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order with its line items.
func (s *orderService) GetByID(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.UserID) {
		return nil, model.ForbiddenError("access to this order is not allowed")
	}

	items, err := s.lineRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	return order, nil
}

// List returns a page of orders populated with their line items.
func (s *orderService) List(ctx context.Context, p model.Principal, q model.ListOrdersQuery) (*model.OrdersPage, error) {
	filter := repository.OrderListFilter{
		Status:   q.Status,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Sort:     q.Sort,
		Order:    q.Order,
	}
	if p.IsAdmin() {
		filter.UserID = q.UserID
	} else {
		// Non-admin callers always see their own orders only.
		uid := p.UserID
		filter.UserID = &uid
	}

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	page := pagination.Compute(total, q.Limit, q.Page)
	filter.Limit = q.Limit
	filter.Offset = page.Offset

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		// The envelope always carries an array, even for an empty page.
		orders = []model.Order{}
	}

	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	itemsByOrder, err := s.lineRepo.ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return &model.OrdersPage{
		Total: total,
		Pages: page.Pages,
		First: page.First,
		Next:  page.Next,
		Prev:  page.Prev,
		Data:  orders,
	}, nil
}

// Update applies a partial update to an order's own fields.
func (s *orderService) Update(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	if req.IsEmpty() {
		return nil, model.ErrNoFieldsToUpdate
	}
	if req.Status != nil && !p.IsAdmin() {
		return nil, model.ForbiddenError("only administrators can change an order's status")
	}
	// Rescheduling delivery either drives the state machine or edits a
	// machine-owned timestamp, so it follows the same rule as status changes.
	if req.DelayedDeliveryAt != nil && !p.IsAdmin() {
		return nil, model.ForbiddenError("only administrators can reschedule an order's delivery")
	}
	if req.PaymentMethod != nil && *req.PaymentMethod == model.PaymentCard && req.Card == nil {
		return nil, model.ValidationError("card details are required for card payment").
			WithDetails(map[string]any{"fields": []string{"card"}})
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if !p.CanAccess(order.UserID) {
		err = model.ForbiddenError("access to this order is not allowed")
		return nil, err
	}

	now := time.Now()
	fields := map[string]any{}
	var history *model.OrderStatusHistory

	switch {
	case req.Status != nil:
		fields, history, err = buildTransition(order, *req.Status, nil, req.DelayedDeliveryAt, p.UserID, now)
		if err != nil {
			return nil, err
		}
	case req.DelayedDeliveryAt != nil && order.Status != model.StatusDelayed:
		// A new delay date on an order that is not delayed yet moves it
		// through the state machine rather than silently editing the row.
		fields, history, err = buildTransition(order, model.StatusDelayed, nil, req.DelayedDeliveryAt, p.UserID, now)
		if err != nil {
			return nil, err
		}
	case req.DelayedDeliveryAt != nil:
		fields["delayed_delivery_at"] = *req.DelayedDeliveryAt
	}

	if touchesNonStatusFields(req) && order.Status.IsTerminal() && history == nil {
		err = model.ConflictError("delivered and cancelled orders can no longer be edited")
		return nil, err
	}

	collectOrderFieldUpdates(order, req, fields)

	shippingChanged := false
	if req.TouchesDelivery() {
		applyDeliveryUpdate(order, req)
		normalizeDelivery(order)
		fields["delivery_type"] = order.DeliveryType
		fields["geolocation_enabled"] = order.GeoEnabled
		fields["latitude"] = order.Latitude
		fields["longitude"] = order.Longitude
		fields["shipping_cost"] = shipping.Cost(order.DeliveryType, order.GeoEnabled, order.Latitude, order.Longitude)
		shippingChanged = true
	}

	if err = s.orderRepo.UpdateFields(ctx, tx, id, fields); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if history != nil {
		if err = s.histRepo.Insert(ctx, tx, history); err != nil {
			return nil, fmt.Errorf("failed to record status change: %w", err)
		}
	}
	if shippingChanged {
		if err = s.orderRepo.RecomputeTotal(ctx, tx, id); err != nil {
			return nil, fmt.Errorf("failed to recompute order total: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order updated successfully")

	return s.GetByID(ctx, p, id)
}

// Delete removes an order together with its line items.
func (s *orderService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	if !p.IsAdmin() {
		return model.ForbiddenError("only administrators can delete orders")
	}

	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !deleted {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// normalizeDelivery enforces the delivery parameter invariants: pickup
// disables geolocation and clears coordinates, and coordinates are kept only
// while geolocation is enabled.
func normalizeDelivery(order *model.Order) {
	if order.DeliveryType == model.DeliveryPickup {
		order.GeoEnabled = false
	}
	if !order.GeoEnabled {
		order.Latitude = nil
		order.Longitude = nil
	}
}

// applyPaymentDetails derives the stored payment fields. Only the last four
// digits of a card number survive.
func applyPaymentDetails(order *model.Order, method model.PaymentMethod, card *model.CardDetails) {
	order.CardType = nil
	order.CardBrand = nil
	order.CardLast4 = nil
	if method != model.PaymentCash {
		order.CashOnDelivery = false
	}
	if method == model.PaymentCard && card != nil {
		cardType := card.Type
		cardBrand := card.Brand
		last4 := card.Number[len(card.Number)-4:]
		order.CardType = &cardType
		order.CardBrand = &cardBrand
		order.CardLast4 = &last4
	}
	if method != model.PaymentBankTransfer {
		order.BankReference = nil
	}
}

// touchesNonStatusFields reports whether the update changes anything besides
// the status and the delay timestamp.
func touchesNonStatusFields(req *model.UpdateOrderRequest) bool {
	return req.Address != nil ||
		req.DeliveryType != nil ||
		req.GeoEnabled != nil ||
		req.Latitude != nil ||
		req.Longitude != nil ||
		req.PaymentMethod != nil ||
		req.Card != nil ||
		req.BankReference != nil ||
		req.CashOnDelivery != nil ||
		req.OriginalDeliveryAt != nil
}

// applyDeliveryUpdate folds the requested delivery changes into the order so
// normalization and shipping run against the effective parameters.
func applyDeliveryUpdate(order *model.Order, req *model.UpdateOrderRequest) {
	if req.DeliveryType != nil {
		order.DeliveryType = *req.DeliveryType
	}
	if req.GeoEnabled != nil {
		order.GeoEnabled = *req.GeoEnabled
	}
	if req.Latitude != nil {
		order.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		order.Longitude = req.Longitude
	}
}

// collectOrderFieldUpdates maps the plain field updates onto their columns.
// Delivery and status fields are handled separately by the caller.
func collectOrderFieldUpdates(order *model.Order, req *model.UpdateOrderRequest, fields map[string]any) {
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.OriginalDeliveryAt != nil {
		fields["original_delivery_at"] = *req.OriginalDeliveryAt
	}
	if req.PaymentMethod != nil {
		applyPaymentDetails(order, *req.PaymentMethod, req.Card)
		if req.CashOnDelivery != nil && *req.PaymentMethod == model.PaymentCash {
			order.CashOnDelivery = *req.CashOnDelivery
		}
		if req.BankReference != nil && *req.PaymentMethod == model.PaymentBankTransfer {
			order.BankReference = req.BankReference
		}
		fields["payment_method"] = *req.PaymentMethod
		fields["card_type"] = order.CardType
		fields["card_brand"] = order.CardBrand
		fields["card_last4"] = order.CardLast4
		fields["bank_reference"] = order.BankReference
		fields["cash_on_delivery"] = order.CashOnDelivery
	} else {
		if req.BankReference != nil {
			fields["bank_reference"] = req.BankReference
		}
		if req.CashOnDelivery != nil {
			fields["cash_on_delivery"] = *req.CashOnDelivery
		}
	}
}
