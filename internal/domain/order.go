package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// transitions lists the statuses reachable from each status. Delivered and
// cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrUnknownStatus
	}
	return st, nil
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether the customer may still cancel the order.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

func (a ShippingAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Pincode != "" && a.Phone != ""
}

type PaymentDetails struct {
	GatewayOrderID   string     `json:"razorpayOrderId,omitempty" gorm:"size:64;index"`
	GatewayPaymentID string     `json:"razorpayPaymentId,omitempty" gorm:"size:64"`
	GatewaySignature string     `json:"razorpaySignature,omitempty" gorm:"size:128"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

func (d PaymentDetails) Complete() bool {
	return d.GatewayOrderID != "" && d.GatewayPaymentID != "" && d.GatewaySignature != ""
}

type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	CustomerID      string          `json:"customerId" gorm:"size:36;not null;index"`
	SellerID        string          `json:"farmerId" gorm:"size:36;not null;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"size:16;not null;default:'pending';index:idx_orders_status_created,priority:1"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"size:16;not null;default:'pending'"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"size:16;not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails" gorm:"embedded;embeddedPrefix:payment_"`
	DeliveryNotes   string          `json:"deliveryNotes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index:idx_orders_status_created,priority:2"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

type OrderItem struct {
	ID          uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID     string          `json:"-" gorm:"size:36;not null;index"`
	ProductID   string          `json:"productId" gorm:"size:36;not null;index"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Unit        Unit            `json:"unit" gorm:"size:16;not null"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal returns the sum of price × quantity over the order lines.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Validate checks the invariants that must hold whenever an order is persisted.
func (o *Order) Validate() error {
	if o.PaymentMethod == PaymentOnline && o.PaymentStatus == PaymentCompleted && !o.PaymentDetails.Complete() {
		return ErrPaymentDetailsRequired
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps the stored total in line with the items. The items are only
// loaded when the caller preloaded them, so an empty slice leaves the total alone.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if len(o.Items) > 0 {
		o.TotalAmount = o.ComputeTotal()
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if o.PaymentMethod == PaymentOnline && o.PaymentStatus == PaymentCompleted && o.PaymentDetails.PaidAt == nil {
		now := time.Now()
		o.PaymentDetails.PaidAt = &now
	}
	return nil
}
