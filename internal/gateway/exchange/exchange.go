// Package exchange defines the abstraction the pipeline uses to talk to a
// spot exchange, so the decision core does not depend on Upbit directly.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"upbot/internal/market"
)

// Balance is one currency line of the account.
type Balance struct {
	Currency    string
	Balance     decimal.Decimal
	Locked      decimal.Decimal
	AvgBuyPrice decimal.Decimal
}

// Orderbook is the top-of-book snapshot for one market.
type Orderbook struct {
	Market    string
	Timestamp int64 // epoch milliseconds
	AskPrice  float64
	BidPrice  float64
	AskSize   float64
	BidSize   float64
}

// OrderResult carries the exchange acknowledgment of a placed order.
type OrderResult struct {
	UUID      string
	Side      string
	OrdType   string
	Market    string
	CreatedAt string
}

type Exchange interface {
	// Balances returns every non-zero currency line of the account.
	Balances(ctx context.Context) ([]Balance, error)

	// Orderbook returns the current top-of-book for the market.
	Orderbook(ctx context.Context, marketCode string) (Orderbook, error)

	// DayCandles returns up to count daily bars, oldest first.
	DayCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error)

	// HourCandles returns up to count 60-minute bars, oldest first.
	HourCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error)

	// BuyMarket spends quoteAmount of the quote currency at market.
	BuyMarket(ctx context.Context, marketCode string, quoteAmount decimal.Decimal) (OrderResult, error)

	// SellMarket sells assetVolume of the base currency at market.
	SellMarket(ctx context.Context, marketCode string, assetVolume decimal.Decimal) (OrderResult, error)
}
