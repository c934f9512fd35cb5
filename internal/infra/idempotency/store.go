package idempotency

import (
	"context"
	"time"

	"harvesthub/internal/infra"

	"github.com/go-redis/redis/v8"
)

type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

var _ infra.IdempotencyStore = (*Store)(nil)
