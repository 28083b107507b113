package observe

import (
	"time"

	"upbot/internal/chart"
	"upbot/internal/market"
)

// TimeseriesBundle carries the daily and hourly frames plus their compact
// JSON encoding for the prompt.
type TimeseriesBundle struct {
	Daily   market.Frame
	Hourly  market.Frame
	Encoded []byte
}

// AccountSnapshot is the account and top-of-book state at observation time.
type AccountSnapshot struct {
	AssetBalance       float64
	QuoteBalance       float64
	AssetAvgCost       float64
	AskPrice           float64
	OrderbookTimestamp int64 // epoch milliseconds
}

// Observation is the immutable signal bundle for one pipeline run. Built
// once by the Assembler and never mutated afterwards; each run owns its own.
type Observation struct {
	Symbol  string
	TakenAt time.Time

	Timeseries Signal[TimeseriesBundle]
	News       Signal[[]market.Headline]
	Sentiment  Signal[string]
	Account    Signal[AccountSnapshot]
	Chart      Signal[chart.ImageResult]
}
