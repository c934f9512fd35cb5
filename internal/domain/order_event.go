package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventPaymentCompleted   = "payment.completed"
	EventPaymentFailed      = "payment.failed"
)

type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       string          `json:"orderId"`
	CustomerID    string          `json:"customerId"`
	SellerID      string          `json:"farmerId"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o *Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		SellerID:      o.SellerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    time.Now(),
	}
}
