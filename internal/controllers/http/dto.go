package http

import (
	"harvesthub/internal/domain"
	"harvesthub/internal/services"
)

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CreateOrderRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod" binding:"required"`
	DeliveryNotes   string                 `json:"deliveryNotes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type InitializePaymentRequest struct {
	OrderIDs []string `json:"orderIds" binding:"required,min=1"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CartResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Cart    *services.CartView `json:"cart"`
}

type OrdersResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Count   int            `json:"count"`
	Orders  []domain.Order `json:"orders"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order"`
}

type PaymentInitResponse struct {
	Success bool                  `json:"success"`
	Data    *services.PaymentInit `json:"data"`
}

type PaymentDetailsResponse struct {
	Success bool                         `json:"success"`
	Data    *services.PaymentDetailsView `json:"data"`
}
