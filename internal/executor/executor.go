// Package executor turns a validated Directive into at most one market
// order. Every exchange failure is logged and absorbed here so a botched
// trade can never take the pipeline down.
package executor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"upbot/internal/decision"
	"upbot/internal/gateway/exchange"
	"upbot/internal/logger"
	"upbot/internal/observe"
)

// Outcome is what happened to the directive at the exchange.
type Outcome string

const (
	OutcomePlaced   Outcome = "placed"
	OutcomeHeld     Outcome = "held"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Report summarizes one execution attempt for the log and the run record.
type Report struct {
	Outcome Outcome
	Detail  string
	Order   exchange.OrderResult
}

// Executor sizes orders from live balances, never from the observation
// snapshot: the decision round-trip can take minutes and balances may have
// moved underneath it.
type Executor struct {
	exchange       exchange.Exchange
	symbol         string
	assetCurrency  string
	quoteCurrency  string
	minOrderAmount decimal.Decimal
	feeRate        decimal.Decimal
}

func New(ex exchange.Exchange, symbol string, minOrderAmount, feeRate float64) *Executor {
	asset, quote := observe.SplitMarketCode(symbol)
	return &Executor{
		exchange:       ex,
		symbol:         symbol,
		assetCurrency:  asset,
		quoteCurrency:  quote,
		minOrderAmount: decimal.NewFromFloat(minOrderAmount),
		feeRate:        decimal.NewFromFloat(feeRate),
	}
}

// Execute carries out the directive. It never returns an error: a failed or
// skipped order is reported, logged and the run proceeds to recording.
func (e *Executor) Execute(ctx context.Context, d decision.Directive) Report {
	switch d.Action {
	case decision.ActionBuy:
		return e.buy(ctx, d.Percentage)
	case decision.ActionSell:
		return e.sell(ctx, d.Percentage)
	case decision.ActionHold:
		logger.Infof("executor: holding (%s)", d.Rationale)
		return Report{Outcome: OutcomeHeld, Detail: "hold directive, no order placed"}
	default:
		// ParseDirective guarantees a valid action; this is unreachable in
		// the wired pipeline.
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("unknown action %q", d.Action)}
	}
}

func (e *Executor) buy(ctx context.Context, percentage float64) Report {
	quote, _, _, err := e.liveBalances(ctx)
	if err != nil {
		logger.Errorf("executor: balance query before buy failed: %v", err)
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("balance query failed: %v", err)}
	}

	spend := quote.Mul(decimal.NewFromFloat(percentage)).Div(decimal.NewFromInt(100))
	if spend.Cmp(e.minOrderAmount) <= 0 {
		detail := fmt.Sprintf("buy of %s %s is at or below the %s minimum",
			spend.StringFixed(0), e.quoteCurrency, e.minOrderAmount.StringFixed(0))
		logger.Warnf("executor: %s, skipping", detail)
		return Report{Outcome: OutcomeSkipped, Detail: detail}
	}

	// Shave the taker fee off the notional so the order cannot be rejected
	// for exceeding the available balance.
	amount := spend.Mul(e.feeRate).RoundDown(0)
	order, err := e.exchange.BuyMarket(ctx, e.symbol, amount)
	if err != nil {
		logger.Errorf("executor: market buy of %s %s failed: %v", amount, e.quoteCurrency, err)
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("market buy failed: %v", err)}
	}
	logger.Infof("executor: market buy placed, %s %s (order %s)", amount, e.quoteCurrency, order.UUID)
	return Report{
		Outcome: OutcomePlaced,
		Detail:  fmt.Sprintf("market buy of %s %s", amount, e.quoteCurrency),
		Order:   order,
	}
}

func (e *Executor) sell(ctx context.Context, percentage float64) Report {
	_, asset, _, err := e.liveBalances(ctx)
	if err != nil {
		logger.Errorf("executor: balance query before sell failed: %v", err)
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("balance query failed: %v", err)}
	}

	volume := asset.Mul(decimal.NewFromFloat(percentage)).Div(decimal.NewFromInt(100))
	if volume.IsZero() {
		detail := fmt.Sprintf("no %s available to sell", e.assetCurrency)
		logger.Warnf("executor: %s, skipping", detail)
		return Report{Outcome: OutcomeSkipped, Detail: detail}
	}

	book, err := e.exchange.Orderbook(ctx, e.symbol)
	if err != nil {
		logger.Errorf("executor: orderbook query before sell failed: %v", err)
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("orderbook query failed: %v", err)}
	}
	notional := volume.Mul(decimal.NewFromFloat(book.AskPrice))
	if notional.Cmp(e.minOrderAmount) <= 0 {
		detail := fmt.Sprintf("sell worth %s %s is at or below the %s minimum",
			notional.StringFixed(0), e.quoteCurrency, e.minOrderAmount.StringFixed(0))
		logger.Warnf("executor: %s, skipping", detail)
		return Report{Outcome: OutcomeSkipped, Detail: detail}
	}

	order, err := e.exchange.SellMarket(ctx, e.symbol, volume)
	if err != nil {
		logger.Errorf("executor: market sell of %s %s failed: %v", volume, e.assetCurrency, err)
		return Report{Outcome: OutcomeFailed, Detail: fmt.Sprintf("market sell failed: %v", err)}
	}
	logger.Infof("executor: market sell placed, %s %s (order %s)", volume, e.assetCurrency, order.UUID)
	return Report{
		Outcome: OutcomePlaced,
		Detail:  fmt.Sprintf("market sell of %s %s", volume, e.assetCurrency),
		Order:   order,
	}
}

// Snapshot re-reads the account and top-of-book after execution, for the
// ledger row. Query failures degrade to zero values rather than aborting
// the recording stage.
func (e *Executor) Snapshot(ctx context.Context) observe.AccountSnapshot {
	var snap observe.AccountSnapshot
	quote, asset, avg, err := e.liveBalances(ctx)
	if err != nil {
		logger.Errorf("executor: post-trade balance query failed: %v", err)
	} else {
		snap.QuoteBalance, _ = quote.Float64()
		snap.AssetBalance, _ = asset.Float64()
		snap.AssetAvgCost, _ = avg.Float64()
	}
	book, err := e.exchange.Orderbook(ctx, e.symbol)
	if err != nil {
		logger.Errorf("executor: post-trade orderbook query failed: %v", err)
	} else {
		snap.AskPrice = book.AskPrice
		snap.OrderbookTimestamp = book.Timestamp
	}
	return snap
}

func (e *Executor) liveBalances(ctx context.Context) (quote, asset, avgCost decimal.Decimal, err error) {
	lines, err := e.exchange.Balances(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	for _, line := range lines {
		switch line.Currency {
		case e.quoteCurrency:
			quote = line.Balance
		case e.assetCurrency:
			asset = line.Balance
			avgCost = line.AvgBuyPrice
		}
	}
	return quote, asset, avgCost, nil
}
