package gormrepo

import (
	"context"
	"errors"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if err := conn(ctx, r.db).Create(order).Error; err != nil {
		log.Error().Err(err).Str("seller_id", order.SellerID).Msg("order create failed")
		return translate(err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := conn(ctx, r.db).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.find(ctx, conn(ctx, r.db).Where("customer_id = ?", customerID))
}

func (r *orderRepo) FindBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return r.find(ctx, conn(ctx, r.db).Where("seller_id = ?", sellerID))
}

func (r *orderRepo) FindPendingPayment(ctx context.Context, customerID string, ids []string) ([]domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := conn(ctx, r.db).Where("id IN ? AND customer_id = ? AND payment_status = ?", ids, customerID, domain.PaymentPending)
	return r.find(ctx, q)
}

func (r *orderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]domain.Order, error) {
	return r.find(ctx, conn(ctx, r.db).Where("payment_gateway_order_id = ?", gatewayOrderID))
}

func (r *orderRepo) find(ctx context.Context, q *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	if err := q.Preload("Items").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) SetGatewayOrderID(ctx context.Context, ids []string, gatewayOrderID string) error {
	return conn(ctx, r.db).Model(&domain.Order{}).
		Where("id IN ?", ids).
		UpdateColumns(map[string]any{"payment_gateway_order_id": gatewayOrderID, "updated_at": time.Now()}).Error
}

func (r *orderRepo) SetPaymentStatus(ctx context.Context, ids []string, status domain.PaymentStatus) error {
	return conn(ctx, r.db).Model(&domain.Order{}).
		Where("id IN ?", ids).
		UpdateColumns(map[string]any{"payment_status": status, "updated_at": time.Now()}).Error
}

func (r *orderRepo) SettlePayment(ctx context.Context, id string, details domain.PaymentDetails) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Order{}).
		Where("id = ? AND payment_status <> ?", id, domain.PaymentCompleted).
		UpdateColumns(map[string]any{
			"payment_status":             domain.PaymentCompleted,
			"payment_gateway_order_id":   details.GatewayOrderID,
			"payment_gateway_payment_id": details.GatewayPaymentID,
			"payment_gateway_signature":  details.GatewaySignature,
			"payment_paid_at":            details.PaidAt,
			"status":                     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", domain.StatusPending, domain.StatusConfirmed),
			"updated_at":                 time.Now(),
		})
	if res.Error != nil {
		log.Error().Err(res.Error).Str("order_id", id).Msg("payment settle failed")
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
