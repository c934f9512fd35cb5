package gormrepo

import (
	"context"
	"errors"

	"harvesthub/internal/domain"
	"harvesthub/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct {
	db *gorm.DB
	tx repository.Transactor
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db, tx: NewTransactor(db)}
}

func (r *cartRepo) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&c, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Save writes the cart row and replaces its lines with cart.Items.
func (r *cartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if cart.ID == "" {
			if err := db.Omit(clause.Associations).Create(cart).Error; err != nil {
				return translate(err)
			}
		} else if err := db.Omit(clause.Associations).Save(cart).Error; err != nil {
			return translate(err)
		}

		if err := db.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return translate(db.Create(&cart.Items).Error)
	})
}
