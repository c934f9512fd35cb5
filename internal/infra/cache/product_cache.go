package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	"harvesthub/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ProductCache is a read-through cache over the product repository. It serves
// display data only; stock checks always go to the database.
type ProductCache struct {
	rdb   *redis.Client
	repo  repository.ProductRepository
	ttl   time.Duration
	group singleflight.Group
}

func NewProductCache(rdb *redis.Client, repo repository.ProductRepository, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, repo: repo, ttl: ttl}
}

func productKey(id string) string {
	return "product:" + id
}

func (c *ProductCache) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if c.rdb != nil {
		missing = c.fromRedis(ctx, ids, out)
	}
	if len(missing) == 0 {
		return out, nil
	}

	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	// Shared flights outlive the caller that started them.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strings.Join(sorted, ","), func() (any, error) {
		return c.repo.FindByIDs(flightCtx, sorted)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	products := res.Val.([]domain.Product)
	for _, p := range products {
		out[p.ID] = p
	}
	c.store(ctx, products)
	return out, nil
}

func (c *ProductCache) fromRedis(ctx context.Context, ids []string, out map[string]domain.Product) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Warn().Err(err).Msg("product cache read failed")
		return ids
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = p
	}
	return missing
}

func (c *ProductCache) store(ctx context.Context, products []domain.Product) {
	if c.rdb == nil || len(products) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, productKey(p.ID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("product cache write failed")
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) {
	if c.rdb == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("product cache invalidate failed")
	}
}

var _ infra.ProductCache = (*ProductCache)(nil)
