package services

import (
	"harvesthub/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Unit         domain.Unit     `json:"unit"`
	Images       []string        `json:"images"`
	Stock        int             `json:"stock"`
	IsOutOfStock bool            `json:"isOutOfStock"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   *ProductSummary `json:"product,omitempty"`
	Farmer    *UserSummary    `json:"farmer,omitempty"`
}

type CartView struct {
	ID          string          `json:"id,omitempty"`
	Items       []CartLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
}

type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
	DeliveryNotes   string
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// PaymentInit carries the parameters the client checkout widget needs.
type PaymentInit struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
}

type PaymentDetailsView struct {
	PaymentDetails domain.PaymentDetails `json:"paymentDetails"`
	PaymentStatus  domain.PaymentStatus  `json:"paymentStatus"`
}

func summarizeProduct(p domain.Product) *ProductSummary {
	return &ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Unit:         p.Unit,
		Images:       p.Images,
		Stock:        p.Stock,
		IsOutOfStock: p.Stock == 0,
	}
}

func summarizeUser(u domain.User) *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}
