package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	rabbit "harvesthub/internal/infra/rabbitmq"
	"harvesthub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// maxNoteLength is the gateway's limit for a single note value.
const maxNoteLength = 256

type PaymentConfig struct {
	KeyID     string
	Currency  string
	StoreName string
}

type PaymentService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	tx        repository.Transactor
	gateway   infra.PaymentGateway
	payouts   *PayoutDistributor
	publisher rabbit.PublisherInterface
	cfg       PaymentConfig
	now       func() time.Time
}

func NewPaymentService(o repository.OrderRepository, u repository.UserRepository, tx repository.Transactor,
	gw infra.PaymentGateway, payouts *PayoutDistributor, pub rabbit.PublisherInterface, cfg PaymentConfig) *PaymentService {
	return &PaymentService{
		orders:    o,
		users:     u,
		tx:        tx,
		gateway:   gw,
		payouts:   payouts,
		publisher: pub,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Initialize opens a single gateway payment covering every pending order of
// the customer among orderIDs and tags those orders with its id.
func (s *PaymentService) Initialize(ctx context.Context, customerID string, orderIDs []string) (*PaymentInit, error) {
	orders, err := s.orders.FindPendingPayment(ctx, customerID, orderIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNoPendingOrders
	}

	total := decimal.Zero
	ids := make([]string, len(orders))
	for i, o := range orders {
		total = total.Add(o.TotalAmount)
		ids[i] = o.ID
	}
	amount := toSubunits(total)

	intentID, err := s.gateway.CreateIntent(ctx, infra.IntentRequest{
		AmountSubunits: amount,
		Currency:       s.cfg.Currency,
		Receipt:        uuid.NewString(),
		Notes: map[string]string{
			"orderIds":   truncate(strings.Join(ids, ","), maxNoteLength),
			"customerId": customerID,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("payment intent creation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	if err := s.orders.SetGatewayOrderID(ctx, ids, intentID); err != nil {
		return nil, err
	}
	log.Info().Str("customer_id", customerID).Str("gateway_order_id", intentID).Int64("amount", amount).Msg("payment initialized")

	out := &PaymentInit{
		Key:         s.cfg.KeyID,
		Amount:      amount,
		Currency:    s.cfg.Currency,
		Name:        s.cfg.StoreName,
		Description: "Payment for orders: " + strings.Join(ids, ", "),
		OrderID:     intentID,
		Prefill:     Prefill{Contact: orders[0].ShippingAddress.Phone},
	}
	user, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		out.Prefill.Name = user.Username
		out.Prefill.Email = user.Email
	}
	return out, nil
}

// Verify checks the gateway callback signature and settles every order tagged
// with the gateway order id. Seller payouts are attempted after settlement and
// never fail the call. On a signature mismatch the matched orders are returned
// alongside the error.
func (s *PaymentService) Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) ([]domain.Order, error) {
	orders, err := s.orders.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	if !s.gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		return s.fail(ctx, gatewayOrderID, orders)
	}

	paidAt := s.now()
	details := domain.PaymentDetails{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		GatewaySignature: signature,
		PaidAt:           &paidAt,
	}
	var settled []domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		settled = settled[:0]
		for i := range orders {
			if orders[i].PaymentStatus == domain.PaymentCompleted {
				continue
			}
			ok, err := s.orders.SettlePayment(ctx, orders[i].ID, details)
			if err != nil {
				return err
			}
			// The status may have moved since the first read.
			current, err := s.orders.FindByID(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			if current == nil {
				continue
			}
			orders[i] = *current
			if ok {
				settled = append(settled, *current)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("gateway_order_id", gatewayOrderID).Int("orders", len(settled)).Msg("payment verified")

	var payable []domain.Order
	for _, o := range settled {
		if o.Status == domain.StatusCancelled {
			log.Warn().Str("order_id", o.ID).Msg("payment captured for cancelled order, refund required")
		} else {
			payable = append(payable, o)
		}
		go s.publish(domain.EventPaymentCompleted, o)
	}
	if len(payable) > 0 && s.payouts != nil {
		summary := s.payouts.Distribute(ctx, payable)
		log.Info().
			Str("gateway_order_id", gatewayOrderID).
			Int64("attempted", summary.Attempted).
			Int64("succeeded", summary.Succeeded).
			Int64("failed", summary.Failed).
			Int64("skipped", summary.Skipped).
			Msg("payout distribution finished")
	}
	return orders, nil
}

// fail marks the unsettled orders as failed and reports the bad signature.
func (s *PaymentService) fail(ctx context.Context, gatewayOrderID string, orders []domain.Order) ([]domain.Order, error) {
	var ids []string
	for i := range orders {
		if orders[i].PaymentStatus == domain.PaymentCompleted {
			continue
		}
		orders[i].PaymentStatus = domain.PaymentFailed
		ids = append(ids, orders[i].ID)
	}
	if len(ids) > 0 {
		if err := s.orders.SetPaymentStatus(ctx, ids, domain.PaymentFailed); err != nil {
			return nil, err
		}
	}
	log.Warn().Str("gateway_order_id", gatewayOrderID).Int("orders", len(ids)).Msg("payment signature mismatch")
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentFailed {
			go s.publish(domain.EventPaymentFailed, o)
		}
	}
	return orders, domain.ErrInvalidSignature
}

func (s *PaymentService) Details(ctx context.Context, customerID, orderID string) (*PaymentDetailsView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, domain.ErrNotOrderCustomer
	}
	return &PaymentDetailsView{
		PaymentDetails: order.PaymentDetails,
		PaymentStatus:  order.PaymentStatus,
	}, nil
}

func (s *PaymentService) publish(eventType string, order domain.Order) {
	evt := domain.NewOrderEvent(eventType, &order)
	if err := s.publisher.Publish(context.Background(), eventType, evt); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish event")
	}
}

// toSubunits converts an amount in currency units to the smallest unit (paise).
func toSubunits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
