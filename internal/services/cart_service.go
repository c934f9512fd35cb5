package services

import (
	"context"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	"harvesthub/internal/repository"

	"github.com/shopspring/decimal"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	users    repository.UserRepository
	cache    infra.ProductCache
}

func NewCartService(c repository.CartRepository, p repository.ProductRepository, u repository.UserRepository, cache infra.ProductCache) *CartService {
	return &CartService{
		carts:    c,
		products: p,
		users:    u,
		cache:    cache,
	}
}

// Add puts the product in the buyer's cart, overwriting the quantity of an
// existing line. A zero quantity means one.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.availableProduct(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if product.SellerID == userID {
		return nil, domain.ErrSelfPurchase
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{UserID: userID}
	}

	cart.Upsert(domain.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
		SellerID:  product.SellerID,
	})
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (*CartView, error) {
	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.availableProduct(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	i, ok := cart.Find(productID)
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}

	cart.Items[i].Quantity = quantity
	cart.Items[i].Price = product.Price
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = nil
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Get returns the cart with product and seller details. A buyer without a
// cart gets an empty one.
func (s *CartService) Get(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{Items: []CartLine{}, TotalAmount: decimal.Zero}, nil
	}
	return s.view(ctx, cart)
}

func (s *CartService) availableProduct(ctx context.Context, productID string, quantity int) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, domain.ErrProductNotFound
	}
	if product.Stock < quantity {
		return nil, &domain.StockError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			Requested: quantity,
		}
	}
	return product, nil
}

func (s *CartService) existingCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	return cart, nil
}

// save recomputes the totals from one batch price lookup and persists the cart.
func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	prices := make(map[string]decimal.Decimal, len(cart.Items))
	if len(cart.Items) > 0 {
		products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
		if err != nil {
			return err
		}
		for _, p := range products {
			prices[p.ID] = p.Price
		}
	}
	cart.Recompute(prices)
	return s.carts.Save(ctx, cart)
}

func (s *CartService) view(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	v := &CartView{
		ID:          cart.ID,
		Items:       make([]CartLine, 0, len(cart.Items)),
		TotalAmount: cart.TotalAmount,
		TotalItems:  cart.TotalItems,
	}
	if len(cart.Items) == 0 {
		return v, nil
	}

	products, err := s.cache.GetMany(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}

	sellerIDs := make([]string, 0, len(cart.Items))
	seen := make(map[string]bool)
	for _, item := range cart.Items {
		if !seen[item.SellerID] {
			seen[item.SellerID] = true
			sellerIDs = append(sellerIDs, item.SellerID)
		}
	}
	sellers, err := s.users.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.User, len(sellers))
	for _, u := range sellers {
		byID[u.ID] = u
	}

	for _, item := range cart.Items {
		line := CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if p, ok := products[item.ProductID]; ok {
			line.Product = summarizeProduct(p)
		}
		if u, ok := byID[item.SellerID]; ok {
			line.Farmer = summarizeUser(u)
		}
		v.Items = append(v.Items, line)
	}
	return v, nil
}
