package infra

import (
	"context"

	"harvesthub/internal/domain"
)

type IntentRequest struct {
	AmountSubunits int64
	Currency       string
	Receipt        string
	Notes          map[string]string
}

type PayoutRequest struct {
	IdempotencyKey string
	AmountSubunits int64
	Currency       string
	AccountHolder  string
	AccountNumber  string
	IFSC           string
	Reference      string
	Narration      string
}

// PaymentGateway is the external payment provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (string, error)
	CreatePayout(ctx context.Context, req PayoutRequest) (string, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

type ProductCache interface {
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	Invalidate(ctx context.Context, ids ...string)
}

type OrderListCache interface {
	Get(ctx context.Context, key string) ([]domain.Order, bool)
	Set(ctx context.Context, key string, orders []domain.Order)
	Invalidate(ctx context.Context, keys ...string)
}

type IdempotencyStore interface {
	// Seen marks key as used and reports whether it had been used before.
	Seen(ctx context.Context, key string) (bool, error)
}
