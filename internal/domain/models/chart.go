package models

import "time"

// PricePoint is a raw upstream price sample, timestamped in milliseconds.
type PricePoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Price       float64 `json:"price"`
}

// VolumePoint is a raw upstream volume sample, timestamped in milliseconds.
type VolumePoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Volume      float64 `json:"volume"`
}

// MarketHistory bundles the two series returned by one upstream fetch.
type MarketHistory struct {
	Prices  []PricePoint
	Volumes []VolumePoint
}

// Candle is one fixed-width OHLCV bucket. Time is the bucket start in unix
// seconds and is always a multiple of the bucket width.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ChartResponse is the immutable chart payload served to callers.
type ChartResponse struct {
	Pair               string    `json:"pair"`
	Timeframe          string    `json:"timeframe"`
	GranularitySeconds int64     `json:"granularitySeconds"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Source             string    `json:"source"`
	Candles            []Candle  `json:"candles"`
}
