package models

import "time"

// Candle represents one OHLCV bar, ascending-by-time when in a series.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MergedBar pairs a fine-grained bar with the most recent coarse-grained
// bar at or before it (backward as-of join of the two timeframes).
type MergedBar struct {
	Bucket time.Time
	Fine   Candle
	Coarse Candle
}
