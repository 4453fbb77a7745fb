package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othmanee23/oraxonoptic/internal/stores"
)

type mockRepository struct {
	calls int32
	fail  bool
}

func (m *mockRepository) SalesTotals(ctx context.Context, storeID int64, now time.Time) (SalesTotals, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.fail {
		return SalesTotals{}, errors.New("boom")
	}
	return SalesTotals{TodayCents: 123456, MonthCents: 2345678, OrdersToday: 4}, nil
}

func (m *mockRepository) StockAlerts(ctx context.Context, storeID int64) (int, error) {
	atomic.AddInt32(&m.calls, 1)
	return 3, nil
}

func (m *mockRepository) WorkshopCounts(ctx context.Context, storeID int64) (WorkshopCounts, error) {
	atomic.AddInt32(&m.calls, 1)
	return WorkshopCounts{Pending: 5, Ready: 2}, nil
}

func (m *mockRepository) ClientsTotal(ctx context.Context, storeID int64) (int, error) {
	atomic.AddInt32(&m.calls, 1)
	return 120, nil
}

func (m *mockRepository) UnreadMessages(ctx context.Context, storeID int64) (int, error) {
	atomic.AddInt32(&m.calls, 1)
	return 7, nil
}

func newService(t *testing.T) (*mockRepository, *Cache, *Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &mockRepository{}
	cache := NewCache(client, time.Minute)
	return repo, cache, NewService(repo, cache)
}

func scoped(id int64) stores.Scope {
	return stores.Scope{StoreID: &id}
}

func TestSummaryEmptyScope(t *testing.T) {
	repo, _, service := newService(t)

	summary, err := service.Summary(context.Background(), stores.Scope{})
	require.NoError(t, err)
	assert.Nil(t, summary.StoreID)
	assert.Zero(t, summary.SalesTodayCents)
	assert.Equal(t, "0,00 MAD", summary.SalesTodayLabel)
	assert.Zero(t, atomic.LoadInt32(&repo.calls))
}

func TestSummaryAggregates(t *testing.T) {
	_, _, service := newService(t)

	summary, err := service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	assert.Equal(t, int64(123456), summary.SalesTodayCents)
	assert.Equal(t, 4, summary.OrdersToday)
	assert.Equal(t, 3, summary.StockAlerts)
	assert.Equal(t, 5, summary.WorkshopPending)
	assert.Equal(t, 2, summary.WorkshopReady)
	assert.Equal(t, 120, summary.ClientsTotal)
	assert.Equal(t, 7, summary.UnreadMessages)
	assert.True(t, strings.HasSuffix(summary.SalesTodayLabel, ",56 MAD"), summary.SalesTodayLabel)
}

func TestSummaryServedFromCache(t *testing.T) {
	repo, _, service := newService(t)

	_, err := service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	first := atomic.LoadInt32(&repo.calls)

	_, err = service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	assert.Equal(t, first, atomic.LoadInt32(&repo.calls))
}

func TestSummaryRebuiltAfterInvalidation(t *testing.T) {
	repo, cache, service := newService(t)

	_, err := service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	first := atomic.LoadInt32(&repo.calls)

	require.NoError(t, cache.InvalidateStore(context.Background(), 1))

	_, err = service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&repo.calls), first)
}

func TestSummaryCacheIsolatedPerStore(t *testing.T) {
	repo, _, service := newService(t)

	_, err := service.Summary(context.Background(), scoped(1))
	require.NoError(t, err)
	first := atomic.LoadInt32(&repo.calls)

	_, err = service.Summary(context.Background(), scoped(2))
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&repo.calls), first)
}

func TestSummaryAggregateFailure(t *testing.T) {
	repo, _, service := newService(t)
	repo.fail = true

	_, err := service.Summary(context.Background(), scoped(1))
	assert.Error(t, err)
}

func TestFormatMAD(t *testing.T) {
	assert.Equal(t, "0,00 MAD", FormatMAD(0))
	assert.Equal(t, "12,50 MAD", FormatMAD(1250))
	assert.True(t, strings.HasSuffix(FormatMAD(123456789), ",89 MAD"))
}
