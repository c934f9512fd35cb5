package mocks

import (
	"context"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockCartRepository struct {
	mock.Mock
}

type MockUserRepository struct {
	mock.Mock
}

// MockTransactor runs fn directly with the caller's context.
type MockTransactor struct{}

type MockPublisher struct {
	mock.Mock
}

type MockPaymentGateway struct {
	mock.Mock
}

type MockProductCache struct {
	mock.Mock
}

type MockOrderListCache struct {
	mock.Mock
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPendingPayment(ctx context.Context, customerID string, ids []string) ([]domain.Order, error) {
	args := m.Called(ctx, customerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]domain.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) SetGatewayOrderID(ctx context.Context, ids []string, gatewayOrderID string) error {
	args := m.Called(ctx, ids, gatewayOrderID)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentStatus(ctx context.Context, ids []string, status domain.PaymentStatus) error {
	args := m.Called(ctx, ids, status)
	return args.Error(0)
}

func (m *MockOrderRepository) SettlePayment(ctx context.Context, id string, details domain.PaymentDetails) (bool, error) {
	args := m.Called(ctx, id, details)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockCartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, req infra.IntentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) CreatePayout(ctx context.Context, req infra.PayoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	args := m.Called(gatewayOrderID, gatewayPaymentID, signature)
	return args.Bool(0)
}

func (m *MockProductCache) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Product), args.Error(1)
}

func (m *MockProductCache) Invalidate(ctx context.Context, ids ...string) {
	m.Called(ctx, ids)
}

func (m *MockOrderListCache) Get(ctx context.Context, key string) ([]domain.Order, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]domain.Order), args.Bool(1)
}

func (m *MockOrderListCache) Set(ctx context.Context, key string, orders []domain.Order) {
	m.Called(ctx, key, orders)
}

func (m *MockOrderListCache) Invalidate(ctx context.Context, keys ...string) {
	m.Called(ctx, keys)
}

func (m *MockIdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

var (
	_ infra.PaymentGateway   = (*MockPaymentGateway)(nil)
	_ infra.ProductCache     = (*MockProductCache)(nil)
	_ infra.OrderListCache   = (*MockOrderListCache)(nil)
	_ infra.IdempotencyStore = (*MockIdempotencyStore)(nil)
)
