package services

import (
	"context"
	"sync/atomic"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	"harvesthub/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type PayoutSummary struct {
	Attempted int64
	Succeeded int64
	Failed    int64
	Skipped   int64
}

// PayoutDistributor credits each seller for the lines of paid orders.
// Failures are logged and counted, never returned.
type PayoutDistributor struct {
	users       repository.UserRepository
	gateway     infra.PaymentGateway
	idem        infra.IdempotencyStore
	currency    string
	concurrency int
}

func NewPayoutDistributor(u repository.UserRepository, gw infra.PaymentGateway, idem infra.IdempotencyStore, currency string, concurrency int) *PayoutDistributor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PayoutDistributor{
		users:       u,
		gateway:     gw,
		idem:        idem,
		currency:    currency,
		concurrency: concurrency,
	}
}

func payoutKey(orderID, productID string) string {
	return "payout:" + orderID + ":" + productID
}

func (d *PayoutDistributor) Distribute(ctx context.Context, orders []domain.Order) PayoutSummary {
	var attempted, succeeded, failed, skipped atomic.Int64

	sellers, err := d.sellers(ctx, orders)
	if err != nil {
		log.Error().Err(err).Msg("payout: seller lookup failed")
		for _, o := range orders {
			failed.Add(int64(len(o.Items)))
		}
		return PayoutSummary{Failed: failed.Load()}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, o := range orders {
		seller, ok := sellers[o.SellerID]
		for _, item := range o.Items {
			order, item := o, item
			if !ok || !seller.HasBankAccount() {
				log.Error().Str("order_id", order.ID).Str("farmer_id", order.SellerID).Msg("payout: seller has no bank account on file")
				failed.Add(1)
				continue
			}
			g.Go(func() error {
				key := payoutKey(order.ID, item.ProductID)
				if d.idem != nil {
					seen, err := d.idem.Seen(gctx, key)
					if err != nil {
						log.Error().Err(err).Str("order_id", order.ID).Msg("payout: idempotency check failed")
						failed.Add(1)
						return nil
					}
					if seen {
						skipped.Add(1)
						return nil
					}
				}

				attempted.Add(1)
				payoutID, err := d.gateway.CreatePayout(gctx, infra.PayoutRequest{
					IdempotencyKey: key,
					AmountSubunits: toSubunits(item.Subtotal()),
					Currency:       d.currency,
					AccountHolder:  seller.BankAccountHolderName,
					AccountNumber:  seller.BankAccountNumber,
					IFSC:           seller.IFSCCode,
					Reference:      order.ID,
					Narration:      "Order payout",
				})
				if err != nil {
					log.Error().Err(err).Str("order_id", order.ID).Str("farmer_id", order.SellerID).Str("product_id", item.ProductID).Msg("payout failed")
					failed.Add(1)
					return nil
				}
				log.Info().Str("order_id", order.ID).Str("farmer_id", order.SellerID).Str("payout_id", payoutID).Msg("payout created")
				succeeded.Add(1)
				return nil
			})
		}
	}
	_ = g.Wait()

	return PayoutSummary{
		Attempted: attempted.Load(),
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
	}
}

func (d *PayoutDistributor) sellers(ctx context.Context, orders []domain.Order) (map[string]domain.User, error) {
	ids := make([]string, 0, len(orders))
	seen := make(map[string]bool)
	for _, o := range orders {
		if !seen[o.SellerID] {
			seen[o.SellerID] = true
			ids = append(ids, o.SellerID)
		}
	}
	users, err := d.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
