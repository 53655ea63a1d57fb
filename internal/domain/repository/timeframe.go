package repository

import (
	"strings"
	"time"
)

// Timeframe selects one of the supported chart horizons.
type Timeframe string

const (
	TF1D  Timeframe = "1D"
	TF7D  Timeframe = "7D"
	TF30D Timeframe = "30D"
	TF90D Timeframe = "90D"
)

// TimeframeConfig maps a timeframe to its upstream lookback window, candle
// bucket width and cache TTL.
type TimeframeConfig struct {
	LookbackDays int
	BucketWidth  time.Duration
	CacheTTL     time.Duration
}

var timeframeConfigs = map[Timeframe]TimeframeConfig{
	TF1D:  {LookbackDays: 1, BucketWidth: 15 * time.Minute, CacheTTL: 60 * time.Second},
	TF7D:  {LookbackDays: 7, BucketWidth: 60 * time.Minute, CacheTTL: 300 * time.Second},
	TF30D: {LookbackDays: 30, BucketWidth: 4 * time.Hour, CacheTTL: 300 * time.Second},
	TF90D: {LookbackDays: 90, BucketWidth: 24 * time.Hour, CacheTTL: 600 * time.Second},
}

// ConfigFor returns the fixed config for tf.
func ConfigFor(tf Timeframe) (TimeframeConfig, bool) {
	cfg, ok := timeframeConfigs[tf]
	return cfg, ok
}

// Timeframes lists all supported timeframes in ascending horizon order.
func Timeframes() []Timeframe {
	return []Timeframe{TF1D, TF7D, TF30D, TF90D}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframeConfigs[tf]
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1D }

// ParseTimeframe converts a raw, case-insensitive string to a timeframe.
// Empty input falls back to the default; unknown values are rejected.
func ParseTimeframe(s string) (Timeframe, bool) {
	if strings.TrimSpace(s) == "" {
		return DefaultTimeframe(), true
	}
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if IsValidTimeframe(tf) {
		return tf, true
	}
	return "", false
}

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if tf, ok := ParseTimeframe(s); ok {
		return tf
	}
	return DefaultTimeframe()
}
