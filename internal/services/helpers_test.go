package services

import (
	"harvesthub/internal/domain"
	"harvesthub/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, seller, price string, stock int) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    dec(price),
		Stock:    stock,
		Unit:     domain.UnitKg,
		SellerID: seller,
		IsActive: true,
	}
}

func address() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street:  "12 Mandi Road",
		City:    "Nashik",
		State:   "Maharashtra",
		Pincode: "422001",
		Phone:   "9800000000",
	}
}

// quietPublisher accepts every event published from background goroutines.
func quietPublisher() *mocks.MockPublisher {
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return pub
}

func quietCache() *mocks.MockProductCache {
	c := new(mocks.MockProductCache)
	c.On("Invalidate", mock.Anything, mock.Anything).Return().Maybe()
	return c
}
