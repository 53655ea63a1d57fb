package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
)

func chartFor(tf drepo.Timeframe) *models.ChartResponse {
	return &models.ChartResponse{
		Pair:      "bitcoin",
		Timeframe: string(tf),
		Candles:   []models.Candle{{Time: 0, Open: 1, High: 1, Low: 1, Close: 1}},
	}
}

func countingLoader(calls *int64, resp *models.ChartResponse, err error) Loader {
	return func(ctx context.Context) (*models.ChartResponse, error) {
		atomic.AddInt64(calls, 1)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

func TestGetOrRefreshCachesWithinTTL(t *testing.T) {
	c := NewChartCache()
	var calls int64
	want := chartFor(drepo.TF1D)

	first, outcome, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Minute, countingLoader(&calls, want, nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefreshed, outcome)

	second, outcome, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Minute, countingLoader(&calls, chartFor(drepo.TF1D), nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, outcome)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.Same(t, first, second)
}

func TestGetOrRefreshReloadsAfterExpiry(t *testing.T) {
	c := NewChartCache()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	var calls int64
	_, _, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Minute, countingLoader(&calls, chartFor(drepo.TF1D), nil))
	require.NoError(t, err)

	now = now.Add(61 * time.Second)

	fresh := chartFor(drepo.TF1D)
	got, outcome, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Minute, countingLoader(&calls, fresh, nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefreshed, outcome)
	assert.Same(t, fresh, got)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetOrRefreshSingleFlight(t *testing.T) {
	c := NewChartCache()
	var calls int64
	want := chartFor(drepo.TF7D)

	loader := func(ctx context.Context) (*models.ChartResponse, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond) // hold the flight open for waiters
		return want, nil
	}

	const n = 25
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]*models.ChartResponse, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], _, errs[i] = c.GetOrRefresh(context.Background(), drepo.TF7D, time.Minute, loader)
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, want, results[i])
	}
}

func TestGetOrRefreshFailurePropagatesAndCachesNothing(t *testing.T) {
	c := NewChartCache()
	boom := errors.New("upstream down")
	var calls int64

	_, _, err := c.GetOrRefresh(context.Background(), drepo.TF30D, time.Minute, countingLoader(&calls, nil, boom))
	require.ErrorIs(t, err, boom)

	_, ok := c.Stale(drepo.TF30D)
	assert.False(t, ok)

	// A retry is allowed immediately and is not blocked by the failure.
	want := chartFor(drepo.TF30D)
	got, _, err := c.GetOrRefresh(context.Background(), drepo.TF30D, time.Minute, countingLoader(&calls, want, nil))
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetOrRefreshFailureKeepsExpiredEntry(t *testing.T) {
	c := NewChartCache()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	var calls int64
	old := chartFor(drepo.TF90D)
	_, _, err := c.GetOrRefresh(context.Background(), drepo.TF90D, time.Minute, countingLoader(&calls, old, nil))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, _, err = c.GetOrRefresh(context.Background(), drepo.TF90D, time.Minute, countingLoader(&calls, nil, errors.New("down")))
	require.Error(t, err)

	stale, ok := c.Stale(drepo.TF90D)
	require.True(t, ok)
	assert.Same(t, old, stale)
}

func TestGetOrRefreshIndependentKeys(t *testing.T) {
	c := NewChartCache()

	blocked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _, _ = c.GetOrRefresh(context.Background(), drepo.TF1D, time.Minute, func(ctx context.Context) (*models.ChartResponse, error) {
			close(blocked)
			<-release
			return chartFor(drepo.TF1D), nil
		})
	}()
	<-blocked // TF1D loader is now stuck in flight

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, _, err := c.GetOrRefresh(context.Background(), drepo.TF7D, time.Minute, countingLoader(new(int64), chartFor(drepo.TF7D), nil))
		assert.NoError(t, err)
		assert.NotNil(t, got)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("TF7D request blocked behind TF1D in-flight loader")
	}
	close(release)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := NewChartCache()
	var calls int64

	_, _, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Hour, countingLoader(&calls, chartFor(drepo.TF1D), nil))
	require.NoError(t, err)

	c.Invalidate(drepo.TF1D)

	_, outcome, err := c.GetOrRefresh(context.Background(), drepo.TF1D, time.Hour, countingLoader(&calls, chartFor(drepo.TF1D), nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefreshed, outcome)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}
