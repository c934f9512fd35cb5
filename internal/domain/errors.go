package domain

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoPendingOrders  = errors.New("no pending orders found")

	ErrCartEmpty              = errors.New("cart is empty")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrSelfPurchase           = errors.New("you cannot buy your own product")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrIncompleteAddress      = errors.New("complete shipping address is required")
	ErrInvalidPaymentMethod   = errors.New("payment method must be cod or online")
	ErrUnknownStatus          = errors.New("unknown order status")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrOrderNotCancellable    = errors.New("order cannot be cancelled at this stage")
	ErrInvalidSignature       = errors.New("invalid payment signature")
	ErrPaymentDetailsRequired = errors.New("payment details are required for online payment")

	ErrNotOrderSeller   = errors.New("only farmer can update order status")
	ErrNotOrderCustomer = errors.New("only customer can perform this action")
	ErrNotOrderParty    = errors.New("not authorized to view this order")

	ErrStatusConflict = errors.New("order status changed concurrently")
	ErrDuplicate      = errors.New("duplicate record")

	ErrGateway = errors.New("payment gateway error")
)
