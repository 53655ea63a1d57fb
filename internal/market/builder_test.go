package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartFeed/internal/domain/models"
)

func TestBuildCandlesSingleBucket(t *testing.T) {
	prices := []models.PricePoint{
		{TimestampMs: 0, Price: 10.0},
		{TimestampMs: 100, Price: 12.0},
		{TimestampMs: 200, Price: 11.0},
	}
	volumes := []models.VolumePoint{
		{TimestampMs: 50, Volume: 5.0},
		{TimestampMs: 150, Volume: 3.0},
	}

	candles := BuildCandles(prices, volumes, 1000)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, int64(0), c.Time)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 12.0, c.High)
	assert.Equal(t, 10.0, c.Low)
	assert.Equal(t, 11.0, c.Close)
	assert.Equal(t, 8.0, c.Volume)
}

func TestBuildCandlesEmptyPrices(t *testing.T) {
	volumes := []models.VolumePoint{{TimestampMs: 100, Volume: 42.0}}
	candles := BuildCandles(nil, volumes, 1000)
	assert.Empty(t, candles)
}

func TestBuildCandlesCloseIsLatestByTime(t *testing.T) {
	// Insertion order deliberately scrambled; close must follow timestamps,
	// not arrival order.
	prices := []models.PricePoint{
		{TimestampMs: 900, Price: 99.0},
		{TimestampMs: 100, Price: 10.0},
		{TimestampMs: 500, Price: 50.0},
	}

	candles := BuildCandles(prices, nil, 1000)
	require.Len(t, candles, 1)
	assert.Equal(t, 10.0, candles[0].Open)
	assert.Equal(t, 99.0, candles[0].Close)
	assert.Equal(t, 99.0, candles[0].High)
	assert.Equal(t, 10.0, candles[0].Low)
}

func TestBuildCandlesSortIdempotent(t *testing.T) {
	prices := make([]models.PricePoint, 0, 200)
	volumes := make([]models.VolumePoint, 0, 200)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		// Distinct timestamps keep the expected output well defined under
		// arbitrary input orderings.
		prices = append(prices, models.PricePoint{
			TimestampMs: int64(i) * 271,
			Price:       10 + rng.Float64()*5,
		})
		volumes = append(volumes, models.VolumePoint{
			TimestampMs: int64(i) * 293,
			Volume:      rng.Float64() * 100,
		})
	}

	first := BuildCandles(prices, volumes, 5000)

	// Reorder inputs and rebuild; output must be identical.
	rng.Shuffle(len(prices), func(i, j int) { prices[i], prices[j] = prices[j], prices[i] })
	rng.Shuffle(len(volumes), func(i, j int) { volumes[i], volumes[j] = volumes[j], volumes[i] })
	second := BuildCandles(prices, volumes, 5000)

	assert.Equal(t, first, second)
}

func TestBuildCandlesDoesNotMutateInputs(t *testing.T) {
	prices := []models.PricePoint{
		{TimestampMs: 3000, Price: 3},
		{TimestampMs: 1000, Price: 1},
	}
	volumes := []models.VolumePoint{
		{TimestampMs: 2500, Volume: 2},
		{TimestampMs: 500, Volume: 1},
	}

	BuildCandles(prices, volumes, 1000)

	assert.Equal(t, int64(3000), prices[0].TimestampMs)
	assert.Equal(t, int64(1000), prices[1].TimestampMs)
	assert.Equal(t, int64(2500), volumes[0].TimestampMs)
	assert.Equal(t, int64(500), volumes[1].TimestampMs)
}

func TestBuildCandlesBucketInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prices := make([]models.PricePoint, 0, 500)
	for i := 0; i < 500; i++ {
		prices = append(prices, models.PricePoint{
			TimestampMs: rng.Int63n(3_600_000),
			Price:       100 + rng.NormFloat64()*10,
		})
	}

	candles := BuildCandles(prices, nil, 60_000)
	require.NotEmpty(t, candles)
	for _, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.Zero(t, (c.Time*1000)%60_000)
	}
}

func TestBuildCandlesDropsVolumeWithoutPrices(t *testing.T) {
	// Prices only in bucket 0; the second volume entry lands in bucket 5000
	// which never sees a price, so it must be dropped, not create a candle.
	prices := []models.PricePoint{
		{TimestampMs: 100, Price: 10},
		{TimestampMs: 9100, Price: 11},
	}
	volumes := []models.VolumePoint{
		{TimestampMs: 200, Volume: 4},
		{TimestampMs: 5200, Volume: 1000},
		{TimestampMs: 9050, Volume: 6},
	}

	candles := BuildCandles(prices, volumes, 1000)
	require.Len(t, candles, 2)

	total := 0.0
	for _, c := range candles {
		total += c.Volume
	}
	assert.Equal(t, 10.0, total)
}

func TestBuildCandlesNegativeVolumeClamped(t *testing.T) {
	prices := []models.PricePoint{{TimestampMs: 100, Price: 10}}
	volumes := []models.VolumePoint{{TimestampMs: 100, Volume: -5}}

	candles := BuildCandles(prices, volumes, 1000)
	require.Len(t, candles, 1)
	assert.Equal(t, 0.0, candles[0].Volume)
}

func TestBuildCandlesTruncatesToMostRecent(t *testing.T) {
	// 600 one-second buckets; only the newest 500 survive.
	prices := make([]models.PricePoint, 0, 600)
	for i := 0; i < 600; i++ {
		prices = append(prices, models.PricePoint{
			TimestampMs: int64(i) * 1000,
			Price:       float64(i),
		})
	}

	candles := BuildCandles(prices, nil, 1000)
	require.Len(t, candles, MaxCandles)
	assert.Equal(t, int64(100), candles[0].Time)
	assert.Equal(t, int64(599), candles[len(candles)-1].Time)
}

func TestBuildCandlesRounding(t *testing.T) {
	// Normalization uses math.Round (half away from zero): OHLC at 8
	// decimals, volume at 2.
	prices := []models.PricePoint{{TimestampMs: 0, Price: 0.123456789123}}
	volumes := []models.VolumePoint{{TimestampMs: 0, Volume: 1.005}}

	candles := BuildCandles(prices, volumes, 1000)
	require.Len(t, candles, 1)
	assert.Equal(t, 0.12345679, candles[0].Open)
	assert.InDelta(t, 1.0, candles[0].Volume, 0.011)
}
