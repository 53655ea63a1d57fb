package market

import (
	"math"
	"sort"

	"ChartFeed/internal/domain/models"
)

// MaxCandles caps the number of buckets returned from one build; when more
// exist only the most recent ones are kept.
const MaxCandles = 500

type bucketCandle struct {
	open, high, low, close float64
	volume                 float64
	samples                int
}

// BuildCandles aggregates raw tick series into fixed-width OHLCV buckets.
//
// Prices and volumes may arrive unordered; both are sorted on copies so the
// caller's slices are never mutated. A price's bucket start is its timestamp
// floored to the bucket width. The first price seen in a bucket sets all four
// OHLC fields; later prices (in timestamp order) update high/low and always
// take over close. Volume entries are consumed by a single forward pointer:
// after each price, every not-yet-consumed volume entry with a timestamp at
// or before that price is attributed to the volume entry's own bucket, but
// only if a candle already exists there. Volume landing on a bucket with no
// price activity is dropped; a candle is never created from volume alone.
//
// OHLC values are normalized to 8 decimal places and volume to 2. An empty
// price series yields an empty result regardless of volumes.
func BuildCandles(prices []models.PricePoint, volumes []models.VolumePoint, bucketWidthMs int64) []models.Candle {
	if len(prices) == 0 || bucketWidthMs <= 0 {
		return []models.Candle{}
	}

	sortedPrices := make([]models.PricePoint, len(prices))
	copy(sortedPrices, prices)
	sort.SliceStable(sortedPrices, func(i, j int) bool {
		return sortedPrices[i].TimestampMs < sortedPrices[j].TimestampMs
	})

	sortedVolumes := make([]models.VolumePoint, len(volumes))
	copy(sortedVolumes, volumes)
	sort.SliceStable(sortedVolumes, func(i, j int) bool {
		return sortedVolumes[i].TimestampMs < sortedVolumes[j].TimestampMs
	})

	buckets := make(map[int64]*bucketCandle)
	vi := 0

	for _, p := range sortedPrices {
		start := floorBucket(p.TimestampMs, bucketWidthMs)
		c, ok := buckets[start]
		if !ok {
			c = &bucketCandle{}
			buckets[start] = c
		}
		if c.samples == 0 {
			c.open, c.high, c.low, c.close = p.Price, p.Price, p.Price, p.Price
		} else {
			c.high = math.Max(c.high, p.Price)
			c.low = math.Min(c.low, p.Price)
			c.close = p.Price
		}
		c.samples++

		// Forward-only volume pointer: consume everything up to this price.
		for vi < len(sortedVolumes) && sortedVolumes[vi].TimestampMs <= p.TimestampMs {
			v := sortedVolumes[vi]
			vi++
			vStart := floorBucket(v.TimestampMs, bucketWidthMs)
			if vc, exists := buckets[vStart]; exists {
				vc.volume += math.Max(v.Volume, 0)
			}
		}
	}

	starts := make([]int64, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	candles := make([]models.Candle, 0, len(starts))
	for _, start := range starts {
		c := buckets[start]
		candles = append(candles, models.Candle{
			Time:   start / 1000,
			Open:   round8(c.open),
			High:   round8(c.high),
			Low:    round8(c.low),
			Close:  round8(c.close),
			Volume: round2(c.volume),
		})
	}

	if len(candles) > MaxCandles {
		candles = candles[len(candles)-MaxCandles:]
	}
	return candles
}

func floorBucket(tsMs, widthMs int64) int64 {
	return (tsMs / widthMs) * widthMs
}

func round8(x float64) float64 { return math.Round(x*1e8) / 1e8 }

func round2(x float64) float64 { return math.Round(x*1e2) / 1e2 }
