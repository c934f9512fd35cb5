package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"harvesthub/internal/domain"
	"harvesthub/internal/mocks"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestProductCache_GetMany(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Name: "Okra", Price: decimal.NewFromInt(20)},
		{ID: "p2", Name: "Eggs", Price: decimal.NewFromInt(60)},
	}

	tests := []struct {
		name string
		rdb  *redis.Client
	}{
		{name: "without redis", rdb: nil},
		{name: "redis unavailable", rdb: unreachableRedis()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockProductRepository)
			repo.On("FindByIDs", mock.Anything, []string{"p1", "p2"}).Return(products, nil).Once()
			c := NewProductCache(tt.rdb, repo, time.Minute)

			got, err := c.GetMany(context.Background(), []string{"p2", "p1"})

			require.NoError(t, err)
			assert.Len(t, got, 2)
			assert.Equal(t, "Eggs", got["p2"].Name)
			repo.AssertExpectations(t)
			c.Invalidate(context.Background(), "p1")
		})
	}
}

func TestProductCache_GetMany_Empty(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	c := NewProductCache(nil, repo, time.Minute)

	got, err := c.GetMany(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestProductCache_GetMany_RepoError(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	c := NewProductCache(nil, repo, time.Minute)

	_, err := c.GetMany(context.Background(), []string{"p1"})

	assert.Error(t, err)
}

func TestProductCache_GetMany_CancelledCallerDoesNotFailOthers(t *testing.T) {
	ctxs := make(chan context.Context, 2)
	release := make(chan struct{})
	repo := new(mocks.MockProductRepository)
	repo.On("FindByIDs", mock.Anything, []string{"p1"}).
		Run(func(args mock.Arguments) {
			ctxs <- args.Get(0).(context.Context)
			<-release
		}).
		Return([]domain.Product{{ID: "p1", Name: "Okra"}}, nil)
	c := NewProductCache(nil, repo, time.Minute)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetMany(firstCtx, []string{"p1"})
		firstErr <- err
	}()
	flightCtx := <-ctxs
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	assert.NoError(t, flightCtx.Err())

	type result struct {
		products map[string]domain.Product
		err      error
	}
	second := make(chan result, 1)
	go func() {
		got, err := c.GetMany(context.Background(), []string{"p1"})
		second <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Okra", res.products["p1"].Name)
}

func TestOrderListCache_Keys(t *testing.T) {
	keys := KeysFor(
		domain.Order{CustomerID: "buyer", SellerID: "farmer-1"},
		domain.Order{CustomerID: "buyer", SellerID: "farmer-2"},
	)

	assert.Equal(t, []string{
		"orders:customer:buyer", "orders:farmer:farmer-1",
		"orders:customer:buyer", "orders:farmer:farmer-2",
	}, keys)
}

func TestOrderListCache_MissesWithoutRedis(t *testing.T) {
	for _, rdb := range []*redis.Client{nil, unreachableRedis()} {
		c := NewOrderListCache(rdb, time.Second)
		c.Set(context.Background(), "k", []domain.Order{{ID: "o1"}})

		_, ok := c.Get(context.Background(), "k")

		assert.False(t, ok)
		c.Invalidate(context.Background(), "k")
	}
}
