package cache

import (
	"context"
	"encoding/json"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"

	"github.com/go-redis/redis/v8"
)

type OrderListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOrderListCache(rdb *redis.Client, ttl time.Duration) *OrderListCache {
	return &OrderListCache{rdb: rdb, ttl: ttl}
}

func CustomerOrdersKey(customerID string) string {
	return "orders:customer:" + customerID
}

func SellerOrdersKey(sellerID string) string {
	return "orders:farmer:" + sellerID
}

// KeysFor returns the list keys an order appears under.
func KeysFor(orders ...domain.Order) []string {
	keys := make([]string, 0, 2*len(orders))
	for _, o := range orders {
		keys = append(keys, CustomerOrdersKey(o.CustomerID), SellerOrdersKey(o.SellerID))
	}
	return keys
}

func (c *OrderListCache) Get(ctx context.Context, key string) ([]domain.Order, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var orders []domain.Order
	if err := json.Unmarshal(b, &orders); err != nil {
		return nil, false
	}
	return orders, true
}

func (c *OrderListCache) Set(ctx context.Context, key string, orders []domain.Order) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(orders)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}

func (c *OrderListCache) Invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}

var _ infra.OrderListCache = (*OrderListCache)(nil)
