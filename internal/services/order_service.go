package services

import (
	"context"
	"errors"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	rabbit "harvesthub/internal/infra/rabbitmq"
	"harvesthub/internal/repository"

	"github.com/rs/zerolog/log"
)

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	tx        repository.Transactor
	publisher rabbit.PublisherInterface
	cache     infra.ProductCache
}

func NewOrderService(o repository.OrderRepository, p repository.ProductRepository, c repository.CartRepository,
	tx repository.Transactor, pub rabbit.PublisherInterface, cache infra.ProductCache) *OrderService {
	return &OrderService{
		orders:    o,
		products:  p,
		carts:     c,
		tx:        tx,
		publisher: pub,
		cache:     cache,
	}
}

// Checkout turns the customer's cart into one order per seller. Stock is
// taken with a conditional decrement inside the same transaction that writes
// the orders and empties the cart, so a checkout either fully happens or
// leaves nothing behind.
func (s *OrderService) Checkout(ctx context.Context, customerID string, in CheckoutInput) ([]domain.Order, error) {
	if !in.ShippingAddress.Complete() {
		return nil, domain.ErrIncompleteAddress
	}
	if !in.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	cart, err := s.carts.FindByUser(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, domain.ErrCartEmpty
	}

	products, err := s.liveProducts(ctx, cart)
	if err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if in.PaymentMethod == domain.PaymentCOD {
		status = domain.StatusConfirmed
	}

	sellers, groups := cart.GroupBySeller()
	var created []domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created = make([]domain.Order, 0, len(sellers))
		for _, sellerID := range sellers {
			order := &domain.Order{
				CustomerID:      customerID,
				SellerID:        sellerID,
				Status:          status,
				PaymentStatus:   domain.PaymentPending,
				PaymentMethod:   in.PaymentMethod,
				ShippingAddress: in.ShippingAddress,
				DeliveryNotes:   in.DeliveryNotes,
			}
			for _, item := range groups[sellerID] {
				p := products[item.ProductID]
				order.Items = append(order.Items, domain.OrderItem{
					ProductID:   item.ProductID,
					ProductName: p.Name,
					Quantity:    item.Quantity,
					Price:       item.Price,
					Unit:        p.Unit,
				})
			}
			order.TotalAmount = order.ComputeTotal()

			if err := s.orders.Create(ctx, order); err != nil {
				return err
			}
			for _, item := range order.Items {
				ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					p := products[item.ProductID]
					return &domain.StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: item.Quantity}
				}
			}
			created = append(created, *order)
		}

		cart.Items = nil
		cart.Recompute(nil)
		return s.carts.Save(ctx, cart)
	})
	if err != nil {
		var stockErr *domain.StockError
		if !errors.As(err, &stockErr) {
			log.Error().Err(err).Str("customer_id", customerID).Msg("checkout failed")
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, productIDsOf(created)...)
	log.Info().Str("customer_id", customerID).Int("orders", len(created)).Msg("checkout completed")
	for i := range created {
		go s.publish(domain.EventOrderCreated, created[i])
	}
	return created, nil
}

// liveProducts re-reads every product in the cart and fails before any write
// if one of them is unavailable or short of the requested quantity.
func (s *OrderService) liveProducts(ctx context.Context, cart *domain.Cart) (map[string]domain.Product, error) {
	list, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	products := make(map[string]domain.Product, len(list))
	for _, p := range list {
		products[p.ID] = p
	}
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok || !p.IsActive {
			return nil, domain.ErrProductNotFound
		}
		if p.Stock < item.Quantity {
			return nil, &domain.StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: item.Quantity}
		}
	}
	return products, nil
}

// UpdateStatus lets the seller on the order move it along the status chain.
func (s *OrderService) UpdateStatus(ctx context.Context, sellerID, orderID, status string) (*domain.Order, error) {
	to, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, domain.ErrNotOrderSeller
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.transition(ctx, order, to); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel lets the customer withdraw an order that has not started processing.
func (s *OrderService) Cancel(ctx context.Context, customerID, orderID string) (*domain.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domain.ErrNotOrderCustomer
	}
	if !order.Cancellable() {
		return nil, domain.ErrOrderNotCancellable
	}

	if err := s.transition(ctx, order, domain.StatusCancelled); err != nil {
		return nil, err
	}
	return order, nil
}

// transition applies the status change as a compare-and-swap on the current
// status. Stock is restored only by the caller that wins the swap into
// cancelled, so it happens once per order.
func (s *OrderService) transition(ctx context.Context, order *domain.Order, to domain.OrderStatus) error {
	from := order.Status
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.orders.CompareAndSetStatus(ctx, order.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrStatusConflict
		}
		if to != domain.StatusCancelled {
			return nil
		}
		for _, item := range order.Items {
			if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Status = to
	log.Info().Str("order_id", order.ID).Str("from", string(from)).Str("to", string(to)).Msg("order status changed")

	event := domain.EventOrderStatusChanged
	if to == domain.StatusCancelled {
		event = domain.EventOrderCancelled
		s.cache.Invalidate(ctx, productIDsOf([]domain.Order{*order})...)
		if order.PaymentStatus == domain.PaymentCompleted {
			log.Warn().Str("order_id", order.ID).Msg("paid order cancelled, refund required")
		}
	}
	go s.publish(event, *order)
	return nil
}

// GetOrderById returns the order to its customer or its seller.
func (s *OrderService) GetOrderById(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != userID && order.SellerID != userID {
		return nil, domain.ErrNotOrderParty
	}
	return order, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) ListForSeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	orders, err := s.orders.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) findOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) publish(eventType string, order domain.Order) {
	evt := domain.NewOrderEvent(eventType, &order)
	if err := s.publisher.Publish(context.Background(), eventType, evt); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish event")
	}
}

func productIDsOf(orders []domain.Order) []string {
	var ids []string
	for _, o := range orders {
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
