package repository

import (
	"context"
	"fmt"

	"ordersvc/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// statsRepository implements StatsRepository using PostgreSQL aggregates.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// OrderStats aggregates counts, spend and the top purchased products.
// A nil userID aggregates across all orders.
func (r *statsRepository) OrderStats(ctx context.Context, userID *uuid.UUID) (*model.OrderStats, error) {
	stats := &model.OrderStats{TopProducts: []model.TopProduct{}}

	summary := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'in_process'),
			COUNT(*) FILTER (WHERE status = 'delayed'),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(total), 0),
			COALESCE(round(AVG(total), 2), 0)
		FROM orders
		WHERE ($1::uuid IS NULL OR user_id = $1)
	`

	err := r.pool.QueryRow(ctx, summary, userID).Scan(
		&stats.TotalOrders, &stats.InProcess, &stats.Delayed, &stats.Delivered, &stats.Cancelled,
		&stats.TotalSpent, &stats.AverageOrder,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order stats summary")
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}

	topProducts := `
		SELECT oi.name, oi.brand, oi.model, SUM(oi.quantity), COUNT(DISTINCT oi.order_id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE ($1::uuid IS NULL OR o.user_id = $1)
		GROUP BY oi.name, oi.brand, oi.model
		ORDER BY SUM(oi.quantity) DESC, oi.name ASC
		LIMIT 5
	`

	rows, err := r.pool.Query(ctx, topProducts, userID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp model.TopProduct
		if err := rows.Scan(&tp.Name, &tp.Brand, &tp.Model, &tp.TotalQuantity, &tp.OrderCount); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan top product row")
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, tp)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating top product rows")
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return stats, nil
}

// StatusStats builds the per-status, monthly and timing aggregates. The
// status vocabulary and transition table are attached by the service layer.
func (r *statsRepository) StatusStats(ctx context.Context, userID *uuid.UUID) (*model.StatusStats, error) {
	stats := &model.StatusStats{
		PerStatus:     []model.StatusBucket{},
		MonthlyTrends: []model.MonthlyBucket{},
		AverageTimes:  []model.StatusDuration{},
	}

	perStatus := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0), COALESCE(round(AVG(total), 2), 0)
		FROM orders
		WHERE ($1::uuid IS NULL OR user_id = $1)
		GROUP BY status
		ORDER BY status
	`

	rows, err := r.pool.Query(ctx, perStatus, userID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query per-status stats")
		return nil, fmt.Errorf("failed to query per-status stats: %w", err)
	}
	for rows.Next() {
		var b model.StatusBucket
		if err := rows.Scan(&b.Status, &b.Count, &b.TotalValue, &b.AverageValue); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan status bucket row")
			return nil, fmt.Errorf("failed to scan status bucket: %w", err)
		}
		stats.PerStatus = append(stats.PerStatus, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating status buckets: %w", err)
	}
	rows.Close()

	monthly := `
		SELECT to_char(created_at, 'YYYY-MM') AS month, status, COUNT(*)
		FROM orders
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND created_at >= date_trunc('month', now()) - INTERVAL '5 months'
		GROUP BY month, status
		ORDER BY month ASC, status ASC
	`

	rows, err = r.pool.Query(ctx, monthly, userID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query monthly trends")
		return nil, fmt.Errorf("failed to query monthly trends: %w", err)
	}
	for rows.Next() {
		var b model.MonthlyBucket
		if err := rows.Scan(&b.Month, &b.Status, &b.Count); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan monthly bucket row")
			return nil, fmt.Errorf("failed to scan monthly bucket: %w", err)
		}
		stats.MonthlyTrends = append(stats.MonthlyTrends, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating monthly buckets: %w", err)
	}
	rows.Close()

	// The gap between consecutive history rows of one order is the time the
	// order spent before reaching the entry's to_status.
	averages := `
		SELECT to_status, round(AVG(EXTRACT(EPOCH FROM gap) / 3600)::numeric, 2)
		FROM (
			SELECT h.to_status,
			       h.changed_at - LAG(h.changed_at) OVER (PARTITION BY h.order_id ORDER BY h.changed_at) AS gap
			FROM order_status_history h
			JOIN orders o ON o.id = h.order_id
			WHERE ($1::uuid IS NULL OR o.user_id = $1)
		) gaps
		WHERE gap IS NOT NULL
		GROUP BY to_status
		ORDER BY to_status
	`

	rows, err = r.pool.Query(ctx, averages, userID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query status timing averages")
		return nil, fmt.Errorf("failed to query status timing averages: %w", err)
	}
	for rows.Next() {
		var d model.StatusDuration
		if err := rows.Scan(&d.Status, &d.AverageHours); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan status duration row")
			return nil, fmt.Errorf("failed to scan status duration: %w", err)
		}
		stats.AverageTimes = append(stats.AverageTimes, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating status durations: %w", err)
	}
	rows.Close()

	return stats, nil
}
