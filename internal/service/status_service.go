package service

import (
	"context"
	"fmt"
	"time"

	"ordersvc/internal/model"
	"ordersvc/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusService implements StatusService.
type statusService struct {
	orderRepo repository.OrderRepository
	histRepo  repository.HistoryRepository
	statsRepo repository.StatsRepository
	logger    zerolog.Logger
}

// NewStatusService creates a new status service.
func NewStatusService(
	orderRepo repository.OrderRepository,
	histRepo repository.HistoryRepository,
	statsRepo repository.StatsRepository,
	logger zerolog.Logger,
) StatusService {
	return &statusService{
		orderRepo: orderRepo,
		histRepo:  histRepo,
		statsRepo: statsRepo,
		logger:    logger.With().Str("service", "status").Logger(),
	}
}

// buildTransition validates the requested edge against the transition table
// and returns the column updates plus the audit row to insert alongside them.
func buildTransition(
	order *model.Order,
	target model.OrderStatus,
	reason *string,
	delayedAt *time.Time,
	actor uuid.UUID,
	now time.Time,
) (map[string]any, *model.OrderStatusHistory, error) {
	if !order.Status.CanTransition(target) {
		msg := fmt.Sprintf("cannot transition order from %s to %s", order.Status, target)
		return nil, nil, model.InvalidTransitionError(msg, order.Status.AllowedTransitions())
	}

	fields := map[string]any{"status": target}

	switch target {
	case model.StatusDelayed:
		if delayedAt != nil {
			fields["delayed_delivery_at"] = *delayedAt
		}
	case model.StatusDelivered:
		// Delivered always stamps the actually achieved delivery time:
		// the supplied delay date, the stored one, or right now.
		deliveredAt := now
		if delayedAt != nil {
			deliveredAt = *delayedAt
		} else if order.DelayedDeliveryAt != nil {
			deliveredAt = *order.DelayedDeliveryAt
		}
		fields["delayed_delivery_at"] = deliveredAt
	}

	history := &model.OrderStatusHistory{
		ID:         uuid.New(),
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   target,
		Reason:     reason,
		ChangedBy:  actor,
		ChangedAt:  now,
	}

	return fields, history, nil
}

// transition runs the locked read-validate-write-audit sequence in one
// transaction and returns the refreshed order.
func (s *statusService) transition(
	ctx context.Context,
	p model.Principal,
	id uuid.UUID,
	target model.OrderStatus,
	reason *string,
	delayedAt *time.Time,
	requireAdmin bool,
) (*model.TransitionResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
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
	if requireAdmin {
		if !p.IsAdmin() {
			err = model.ForbiddenError("only administrators can change an order's status")
			return nil, err
		}
	} else if !p.CanAccess(order.UserID) {
		err = model.ForbiddenError("access to this order is not allowed")
		return nil, err
	}

	now := time.Now()
	fields, history, err := buildTransition(order, target, reason, delayedAt, p.UserID, now)
	if err != nil {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("rejected status transition")
		return nil, err
	}

	if err = s.orderRepo.UpdateFields(ctx, tx, id, fields); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err = s.histRepo.Insert(ctx, tx, history); err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(history.FromStatus)).
		Str("to", string(history.ToStatus)).
		Str("changed_by", p.UserID.String()).
		Msg("order status changed")

	refreshed, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	return &model.TransitionResult{
		Order:  refreshed,
		From:   history.FromStatus,
		To:     history.ToStatus,
		Reason: reason,
	}, nil
}

// Transition moves an order to a new status. Admin only.
func (s *statusService) Transition(ctx context.Context, p model.Principal, id uuid.UUID, req *model.TransitionRequest) (*model.TransitionResult, error) {
	return s.transition(ctx, p, id, req.Status, req.Reason, req.DelayedDeliveryAt, true)
}

// Cancel moves an order to cancelled on behalf of the owner or an admin.
func (s *statusService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, req *model.CancelOrderRequest) (*model.Order, error) {
	reason := req.Reason
	result, err := s.transition(ctx, p, id, model.StatusCancelled, &reason, nil, false)
	if err != nil {
		// An order that can no longer reach cancelled is a state conflict on
		// this endpoint, not a malformed request.
		if de := model.AsDomainError(err); de != nil && de.Code == model.ErrCodeInvalidTransition {
			return nil, model.ConflictError(de.Message).WithDetails(de.Details)
		}
		return nil, err
	}
	return result.Order, nil
}

// History returns an order's transitions, oldest first.
func (s *statusService) History(ctx context.Context, p model.Principal, id uuid.UUID) ([]model.OrderStatusHistory, error) {
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

	entries, err := s.histRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	if entries == nil {
		entries = []model.OrderStatusHistory{}
	}
	return entries, nil
}

// statsScope returns the user filter for aggregate queries: admins see all
// orders, everyone else their own.
func statsScope(p model.Principal) *uuid.UUID {
	if p.IsAdmin() {
		return nil
	}
	uid := p.UserID
	return &uid
}

// Stats aggregates order counts, spend and the top purchased products.
func (s *statusService) Stats(ctx context.Context, p model.Principal) (*model.OrderStats, error) {
	stats, err := s.statsRepo.OrderStats(ctx, statsScope(p))
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return stats, nil
}

// StatusStats aggregates lifecycle metrics and attaches the status
// vocabulary with its transition table so clients can render the machine.
func (s *statusService) StatusStats(ctx context.Context, p model.Principal) (*model.StatusStats, error) {
	stats, err := s.statsRepo.StatusStats(ctx, statsScope(p))
	if err != nil {
		return nil, fmt.Errorf("failed to compute status stats: %w", err)
	}
	stats.Statuses = model.ValidStatuses
	stats.Transitions = model.Transitions
	return stats, nil
}
