package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	UserID      string          `json:"user" gorm:"size:36;uniqueIndex;not null"`
	Items       []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null;default:0"`
	TotalItems  int             `json:"totalItems" gorm:"not null;default:0"`
}

type CartItem struct {
	ID        uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	CartID    string          `json:"-" gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	ProductID string          `json:"productId" gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	SellerID  string          `json:"farmerId" gorm:"size:36;not null"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Cart) Find(productID string) (int, bool) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// Upsert overwrites the line for the product if present, otherwise appends it.
func (c *Cart) Upsert(item CartItem) {
	if i, ok := c.Find(item.ProductID); ok {
		c.Items[i].Quantity = item.Quantity
		c.Items[i].Price = item.Price
		c.Items[i].SellerID = item.SellerID
		return
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) Remove(productID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Recompute refreshes price snapshots from the given live prices and
// rebuilds the totals. Lines without a live price count zero.
func (c *Cart) Recompute(prices map[string]decimal.Decimal) {
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
		price, ok := prices[c.Items[i].ProductID]
		if !ok {
			continue
		}
		c.Items[i].Price = price
		total = total.Add(price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity))))
	}
	c.TotalAmount = total
	c.TotalItems = count
}

// GroupBySeller partitions the lines by seller, keeping the order in which
// sellers first appear.
func (c *Cart) GroupBySeller() ([]string, map[string][]CartItem) {
	var sellers []string
	groups := make(map[string][]CartItem)
	for _, item := range c.Items {
		if _, ok := groups[item.SellerID]; !ok {
			sellers = append(sellers, item.SellerID)
		}
		groups[item.SellerID] = append(groups[item.SellerID], item)
	}
	return sellers, groups
}
