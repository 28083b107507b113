package observe

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"upbot/internal/chart"
	"upbot/internal/gateway/exchange"
	"upbot/internal/logger"
	"upbot/internal/market"
)

// NewsSource and SentimentSource are the non-exchange signal adapters.
type NewsSource interface {
	Fetch(ctx context.Context) ([]market.Headline, error)
}

type SentimentSource interface {
	Fetch(ctx context.Context, limit int) ([]market.FearGreedPoint, error)
}

type ChartSource interface {
	Enabled() bool
	Capture(ctx context.Context, symbol string, frames []market.Frame) (chart.ImageResult, error)
}

// AssemblerConfig fixes the shape of every observation.
type AssemblerConfig struct {
	Symbol         string
	DailyCandles   int
	HourlyCandles  int
	FearGreedLimit int
}

// Assembler fans the signal sources into one Observation. It never fails a
// run: every adapter error becomes a degraded placeholder.
type Assembler struct {
	cfg       AssemblerConfig
	exch      exchange.Exchange
	news      NewsSource
	sentiment SentimentSource
	charts    ChartSource
	nowFn     func() time.Time
}

func NewAssembler(cfg AssemblerConfig, exch exchange.Exchange, news NewsSource, sentiment SentimentSource, charts ChartSource) *Assembler {
	return &Assembler{
		cfg:       cfg,
		exch:      exch,
		news:      news,
		sentiment: sentiment,
		charts:    charts,
		nowFn:     time.Now,
	}
}

// Assemble builds the observation for one run. The timeseries is fetched
// first because the chart renders from its frames; the remaining adapters
// share no state and run concurrently.
func (a *Assembler) Assemble(ctx context.Context) Observation {
	obs := Observation{
		Symbol:  a.cfg.Symbol,
		TakenAt: a.nowFn(),
	}
	obs.Timeseries = a.gatherTimeseries(ctx)

	var g errgroup.Group
	g.Go(func() error {
		obs.News = a.gatherNews(ctx)
		return nil
	})
	g.Go(func() error {
		obs.Sentiment = a.gatherSentiment(ctx)
		return nil
	})
	g.Go(func() error {
		obs.Account = a.gatherAccount(ctx)
		return nil
	})
	g.Go(func() error {
		obs.Chart = a.gatherChart(ctx, obs.Timeseries)
		return nil
	})
	_ = g.Wait() // adapters degrade, never error

	return obs
}

func (a *Assembler) gatherTimeseries(ctx context.Context) Signal[TimeseriesBundle] {
	daily, err := a.exch.DayCandles(ctx, a.cfg.Symbol, a.cfg.DailyCandles)
	if err != nil {
		logger.Warnf("observe: daily candles unavailable: %v", err)
		return DegradedSignal[TimeseriesBundle]("daily candles: " + err.Error())
	}
	hourly, err := a.exch.HourCandles(ctx, a.cfg.Symbol, a.cfg.HourlyCandles)
	if err != nil {
		logger.Warnf("observe: hourly candles unavailable: %v", err)
		return DegradedSignal[TimeseriesBundle]("hourly candles: " + err.Error())
	}
	bundle := TimeseriesBundle{
		Daily: market.Frame{
			Series:     market.Series{Interval: "daily", Candles: daily},
			Indicators: market.ComputeIndicators(market.Series{Interval: "daily", Candles: daily}),
		},
		Hourly: market.Frame{
			Series:     market.Series{Interval: "hourly", Candles: hourly},
			Indicators: market.ComputeIndicators(market.Series{Interval: "hourly", Candles: hourly}),
		},
	}
	encoded, err := market.EncodeFrames(bundle.Daily, bundle.Hourly)
	if err != nil {
		return DegradedSignal[TimeseriesBundle]("encoding frames: " + err.Error())
	}
	bundle.Encoded = encoded
	return OK(bundle)
}

func (a *Assembler) gatherNews(ctx context.Context) Signal[[]market.Headline] {
	if a.news == nil {
		return DegradedSignal[[]market.Headline]("news source not configured")
	}
	items, err := a.news.Fetch(ctx)
	if err != nil {
		logger.Warnf("observe: news unavailable: %v", err)
		return DegradedSignal[[]market.Headline](err.Error())
	}
	return OK(items)
}

func (a *Assembler) gatherSentiment(ctx context.Context) Signal[string] {
	if a.sentiment == nil {
		return DegradedSignal[string]("sentiment source not configured")
	}
	points, err := a.sentiment.Fetch(ctx, a.cfg.FearGreedLimit)
	if err != nil {
		logger.Warnf("observe: fear & greed unavailable: %v", err)
		return DegradedSignal[string](err.Error())
	}
	return OK(market.FormatFearGreed(points))
}

// gatherAccount degrades to zero balances when the exchange is unreachable,
// so the run can still reach the model and the ledger.
func (a *Assembler) gatherAccount(ctx context.Context) Signal[AccountSnapshot] {
	var snap AccountSnapshot
	book, bookErr := a.exch.Orderbook(ctx, a.cfg.Symbol)
	if bookErr != nil {
		logger.Warnf("observe: orderbook unavailable: %v", bookErr)
	} else {
		snap.AskPrice = book.AskPrice
		snap.OrderbookTimestamp = book.Timestamp
	}

	balances, err := a.exch.Balances(ctx)
	if err != nil {
		logger.Warnf("observe: balances unavailable, proceeding with zero balances: %v", err)
		return Signal[AccountSnapshot]{Value: snap, Degraded: true, Reason: err.Error()}
	}
	asset, quote := SplitMarketCode(a.cfg.Symbol)
	for _, b := range balances {
		switch b.Currency {
		case asset:
			snap.AssetBalance, _ = b.Balance.Float64()
			snap.AssetAvgCost, _ = b.AvgBuyPrice.Float64()
		case quote:
			snap.QuoteBalance, _ = b.Balance.Float64()
		}
	}
	if bookErr != nil {
		return Signal[AccountSnapshot]{Value: snap, Degraded: true, Reason: bookErr.Error()}
	}
	return OK(snap)
}

func (a *Assembler) gatherChart(ctx context.Context, ts Signal[TimeseriesBundle]) Signal[chart.ImageResult] {
	if a.charts == nil || !a.charts.Enabled() {
		return DegradedSignal[chart.ImageResult]("chart capture disabled")
	}
	if ts.Degraded {
		return DegradedSignal[chart.ImageResult]("no timeseries to render")
	}
	img, err := a.charts.Capture(ctx, a.cfg.Symbol, []market.Frame{ts.Value.Hourly, ts.Value.Daily})
	if err != nil {
		logger.Warnf("observe: chart capture failed: %v", err)
		return DegradedSignal[chart.ImageResult](err.Error())
	}
	return OK(img)
}

// SplitMarketCode turns an Upbit market code like "KRW-BTC" into its asset
// and quote currencies ("BTC", "KRW").
func SplitMarketCode(code string) (asset, quote string) {
	parts := strings.SplitN(strings.ToUpper(code), "-", 2)
	if len(parts) != 2 {
		return code, ""
	}
	return parts[1], parts[0]
}
