package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerfix/acceptor/internal/apierr"
	"github.com/brokerfix/acceptor/internal/domain"
)

func TestInsertThenGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	o := &domain.Order{ClOrdID: "A1", Symbol: "AAPL", Quantity: decimal.NewFromInt(10), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, s.Insert(ctx, o))

	got, err := s.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestInsertDuplicateIsBadState(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	o := &domain.Order{ClOrdID: "A1", Quantity: decimal.NewFromInt(1)}
	require.NoError(t, s.Insert(ctx, o))

	err := s.Insert(ctx, o)
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.BadState, e.Kind)
}

func TestGetUnknownIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	_, err := s.Get(ctx, "missing")
	require.Error(t, err)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.NotFound, e.Kind)
}

// Concurrent WithLock calls on the same ClOrdID must never interleave:
// every increment of FilledQuantity must be visible to the next one.
func TestWithLockSerializesPerOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	o := &domain.Order{ClOrdID: "RACE", Quantity: decimal.NewFromInt(1000), Status: domain.New}
	require.NoError(t, s.Insert(ctx, o))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(ctx, "RACE", func(cur *domain.Order) (*domain.Order, []*domain.Execution, error) {
				next := cur.Clone()
				next.FilledQuantity = next.FilledQuantity.Add(decimal.NewFromInt(1))
				return next, nil, nil
			})
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "RACE")
	require.NoError(t, err)
	assert.True(t, got.FilledQuantity.Equal(decimal.NewFromInt(100)))
}
