package service

import (
	"context"

	"ordersvc/internal/catalog"
	"ordersvc/internal/model"
	"ordersvc/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, f repository.OrderListFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error {
	args := m.Called(ctx, tx, id, fields)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) RecomputeTotal(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockLineItemRepository is a mock implementation of repository.LineItemRepository.
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) CreateBatch(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockLineItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderLineItem), args.Error(1)
}

func (m *MockLineItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderLineItem, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]model.OrderLineItem), args.Error(1)
}

func (m *MockLineItemRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) (*model.OrderLineItem, error) {
	args := m.Called(ctx, tx, orderID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderLineItem), args.Error(1)
}

func (m *MockLineItemRepository) Insert(ctx context.Context, tx pgx.Tx, item *model.OrderLineItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockLineItemRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, fields map[string]any) error {
	args := m.Called(ctx, tx, id, fields)
	return args.Error(0)
}

func (m *MockLineItemRepository) Delete(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, productID string) error {
	args := m.Called(ctx, tx, orderID, productID)
	return args.Error(0)
}

func (m *MockLineItemRepository) CountByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Int(0), args.Error(1)
}

// MockHistoryRepository is a mock implementation of repository.HistoryRepository.
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderStatusHistory), args.Error(1)
}

// MockStatsRepository is a mock implementation of repository.StatsRepository.
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) OrderStats(ctx context.Context, userID *uuid.UUID) (*model.OrderStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

func (m *MockStatsRepository) StatusStats(ctx context.Context, userID *uuid.UUID) (*model.StatusStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StatusStats), args.Error(1)
}

// MockCatalog is a mock implementation of catalog.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]catalog.Entry, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]catalog.Entry), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
