package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Unit string

const (
	UnitKg      Unit = "kg"
	UnitGram    Unit = "gram"
	UnitPiece   Unit = "piece"
	UnitDozen   Unit = "dozen"
	UnitLiter   Unit = "liter"
	UnitQuintal Unit = "quintal"
)

type Product struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	Name         string          `json:"name" gorm:"not null;index"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock        int             `json:"stock" gorm:"not null;default:0"`
	Unit         Unit            `json:"unit" gorm:"size:16;not null"`
	Category     string          `json:"category" gorm:"size:64;index"`
	Images       []string        `json:"images" gorm:"serializer:json"`
	SellerID     string          `json:"farmerId" gorm:"size:36;not null;index"`
	IsActive     bool            `json:"isActive" gorm:"not null"`
	IsOutOfStock bool            `json:"isOutOfStock" gorm:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.IsOutOfStock = p.Stock == 0
	return nil
}

// StockError reports a product that cannot cover a requested quantity.
type StockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s is out of stock or has insufficient quantity (available %d, requested %d)",
		e.Name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
