package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"ordersvc/internal/middleware"
	"ordersvc/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, p model.Principal, req *model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, p model.Principal, q model.ListOrdersQuery) (*model.OrdersPage, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrdersPage), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

// MockStatusService is a mock implementation of service.StatusService.
type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) Transition(ctx context.Context, p model.Principal, id uuid.UUID, req *model.TransitionRequest) (*model.TransitionResult, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransitionResult), args.Error(1)
}

func (m *MockStatusService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, req *model.CancelOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockStatusService) History(ctx context.Context, p model.Principal, id uuid.UUID) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderStatusHistory), args.Error(1)
}

func (m *MockStatusService) Stats(ctx context.Context, p model.Principal) (*model.OrderStats, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

func (m *MockStatusService) StatusStats(ctx context.Context, p model.Principal) (*model.StatusStats, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StatusStats), args.Error(1)
}

// MockLineItemService is a mock implementation of service.LineItemService.
type MockLineItemService struct {
	mock.Mock
}

func (m *MockLineItemService) List(ctx context.Context, p model.Principal, orderID uuid.UUID) (*model.LineItemsSummary, error) {
	args := m.Called(ctx, p, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LineItemsSummary), args.Error(1)
}

func (m *MockLineItemService) Add(ctx context.Context, p model.Principal, orderID uuid.UUID, req *model.AddLineItemRequest) (*model.Order, error) {
	args := m.Called(ctx, p, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLineItemService) Update(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string, req *model.UpdateLineItemRequest) (*model.Order, error) {
	args := m.Called(ctx, p, orderID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLineItemService) Remove(ctx context.Context, p model.Principal, orderID uuid.UUID, productID string) (*model.Order, error) {
	args := m.Called(ctx, p, orderID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// serve runs req through a chi router with the given route registered,
// impersonating the principal the auth middleware would attach.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request, p model.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(middleware.WithPrincipal(req.Context(), p)))
	return rec
}
