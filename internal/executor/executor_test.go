package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upbot/internal/decision"
	"upbot/internal/gateway/exchange"
	"upbot/internal/market"
)

type fakeExchange struct {
	balances    []exchange.Balance
	balancesErr error
	book        exchange.Orderbook
	bookErr     error
	orderErr    error

	buyAmounts  []decimal.Decimal
	sellVolumes []decimal.Decimal
}

func (f *fakeExchange) Balances(ctx context.Context) ([]exchange.Balance, error) {
	return f.balances, f.balancesErr
}

func (f *fakeExchange) Orderbook(ctx context.Context, marketCode string) (exchange.Orderbook, error) {
	return f.book, f.bookErr
}

func (f *fakeExchange) DayCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeExchange) HourCandles(ctx context.Context, marketCode string, count int) ([]market.Candle, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeExchange) BuyMarket(ctx context.Context, marketCode string, quoteAmount decimal.Decimal) (exchange.OrderResult, error) {
	if f.orderErr != nil {
		return exchange.OrderResult{}, f.orderErr
	}
	f.buyAmounts = append(f.buyAmounts, quoteAmount)
	return exchange.OrderResult{UUID: "order-1", Side: "bid"}, nil
}

func (f *fakeExchange) SellMarket(ctx context.Context, marketCode string, assetVolume decimal.Decimal) (exchange.OrderResult, error) {
	if f.orderErr != nil {
		return exchange.OrderResult{}, f.orderErr
	}
	f.sellVolumes = append(f.sellVolumes, assetVolume)
	return exchange.OrderResult{UUID: "order-2", Side: "ask"}, nil
}

func balancesKRWBTC(krw, btc, avgBuy float64) []exchange.Balance {
	return []exchange.Balance{
		{Currency: "KRW", Balance: decimal.NewFromFloat(krw)},
		{Currency: "BTC", Balance: decimal.NewFromFloat(btc), AvgBuyPrice: decimal.NewFromFloat(avgBuy)},
	}
}

func TestBuyShavesFeeAndPlacesOrder(t *testing.T) {
	ex := &fakeExchange{balances: balancesKRWBTC(100000, 0, 0)}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionBuy, Percentage: 50})
	assert.Equal(t, OutcomePlaced, report.Outcome)
	require.Len(t, ex.buyAmounts, 1)
	// 100000 * 50% * 0.9995, rounded down to whole KRW.
	assert.Equal(t, "49975", ex.buyAmounts[0].String())
	assert.Equal(t, "order-1", report.Order.UUID)
}

func TestBuyBelowMinimumIsSkipped(t *testing.T) {
	ex := &fakeExchange{balances: balancesKRWBTC(9000, 0, 0)}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionBuy, Percentage: 50})
	assert.Equal(t, OutcomeSkipped, report.Outcome)
	assert.Empty(t, ex.buyAmounts)
}

func TestSellPlacesVolumeOrder(t *testing.T) {
	ex := &fakeExchange{
		balances: balancesKRWBTC(0, 0.5, 90000000),
		book:     exchange.Orderbook{AskPrice: 100000000},
	}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionSell, Percentage: 40})
	assert.Equal(t, OutcomePlaced, report.Outcome)
	require.Len(t, ex.sellVolumes, 1)
	assert.Equal(t, "0.2", ex.sellVolumes[0].String())
}

func TestSellBelowMinimumNotionalIsSkipped(t *testing.T) {
	ex := &fakeExchange{
		balances: balancesKRWBTC(0, 0.00001, 90000000),
		book:     exchange.Orderbook{AskPrice: 100000000},
	}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	// 0.00001 BTC * 100M KRW = 1000 KRW, under the 5000 minimum.
	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionSell, Percentage: 100})
	assert.Equal(t, OutcomeSkipped, report.Outcome)
	assert.Empty(t, ex.sellVolumes)
}

func TestSellWithNoAssetIsSkipped(t *testing.T) {
	ex := &fakeExchange{balances: balancesKRWBTC(100000, 0, 0)}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionSell, Percentage: 100})
	assert.Equal(t, OutcomeSkipped, report.Outcome)
}

func TestHoldPlacesNothing(t *testing.T) {
	ex := &fakeExchange{balances: balancesKRWBTC(100000, 1, 0)}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionHold})
	assert.Equal(t, OutcomeHeld, report.Outcome)
	assert.Empty(t, ex.buyAmounts)
	assert.Empty(t, ex.sellVolumes)
}

func TestExchangeFailuresAreAbsorbed(t *testing.T) {
	ex := &fakeExchange{
		balances: balancesKRWBTC(100000, 0, 0),
		orderErr: fmt.Errorf("insufficient funds"),
	}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionBuy, Percentage: 100})
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Contains(t, report.Detail, "insufficient funds")
}

func TestBalanceQueryFailureFailsTheAttempt(t *testing.T) {
	ex := &fakeExchange{balancesErr: fmt.Errorf("502 bad gateway")}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	report := e.Execute(context.Background(), decision.Directive{Action: decision.ActionBuy, Percentage: 100})
	assert.Equal(t, OutcomeFailed, report.Outcome)
}

func TestSnapshotDegradesToZeroOnErrors(t *testing.T) {
	ex := &fakeExchange{
		balancesErr: fmt.Errorf("down"),
		bookErr:     fmt.Errorf("down"),
	}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	snap := e.Snapshot(context.Background())
	assert.Zero(t, snap.AssetBalance)
	assert.Zero(t, snap.QuoteBalance)
	assert.Zero(t, snap.AskPrice)
}

func TestSnapshotReflectsLiveState(t *testing.T) {
	ex := &fakeExchange{
		balances: balancesKRWBTC(42000, 0.25, 95000000),
		book:     exchange.Orderbook{AskPrice: 101000000, Timestamp: 1700000000000},
	}
	e := New(ex, "KRW-BTC", 5000, 0.9995)

	snap := e.Snapshot(context.Background())
	assert.Equal(t, 42000.0, snap.QuoteBalance)
	assert.Equal(t, 0.25, snap.AssetBalance)
	assert.Equal(t, 95000000.0, snap.AssetAvgCost)
	assert.Equal(t, 101000000.0, snap.AskPrice)
	assert.Equal(t, int64(1700000000000), snap.OrderbookTimestamp)
}
