package repository

import (
	"context"
	"fmt"

	"ordersvc/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// historyRepository implements HistoryRepository using PostgreSQL.
type historyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewHistoryRepository creates a new PostgreSQL-backed status history repository.
func NewHistoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) HistoryRepository {
	return &historyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "history").Logger(),
	}
}

// Insert records a status change in the same transaction that applied it.
func (r *historyRepository) Insert(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.OrderID, entry.FromStatus, entry.ToStatus,
		entry.Reason, entry.ChangedBy, entry.ChangedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", entry.OrderID.String()).
			Str("to_status", string(entry.ToStatus)).
			Msg("failed to insert status history entry")
		return fmt.Errorf("failed to insert status history entry: %w", err)
	}

	return nil
}

// ListByOrder returns the order's status changes oldest first.
func (r *historyRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, from_status, to_status, reason, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []model.OrderStatusHistory
	for rows.Next() {
		var e model.OrderStatusHistory
		err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.Reason, &e.ChangedBy, &e.ChangedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status history row")
			return nil, fmt.Errorf("failed to scan status history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status history rows")
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return entries, nil
}
