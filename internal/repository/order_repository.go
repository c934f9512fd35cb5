package repository

import (
	"context"

	"harvesthub/internal/domain"
)

// Lookups return (nil, nil) when no record matches.

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	FindPendingPayment(ctx context.Context, customerID string, ids []string) ([]domain.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]domain.Order, error)
	SetGatewayOrderID(ctx context.Context, ids []string, gatewayOrderID string) error
	SetPaymentStatus(ctx context.Context, ids []string, status domain.PaymentStatus) error
	// SettlePayment records a verified payment unless the order is already
	// paid. A pending order moves to confirmed; other statuses are left alone.
	SettlePayment(ctx context.Context, id string, details domain.PaymentDetails) (bool, error)
	// CompareAndSetStatus moves the order to `to` only if it is still in `from`.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// DecrementStock subtracts qty only when at least qty is in stock and
	// reports whether it did.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	IncrementStock(ctx context.Context, id string, qty int) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// Transactor runs fn inside one database transaction. Repositories called
// with the context handed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
