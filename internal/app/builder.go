package app

import (
	"fmt"
	"time"

	"upbot/internal/chart"
	"upbot/internal/config"
	"upbot/internal/decision"
	"upbot/internal/executor"
	"upbot/internal/gateway/exchange"
	"upbot/internal/gateway/provider"
	"upbot/internal/gateway/upbit"
	"upbot/internal/ledger"
	"upbot/internal/logger"
	"upbot/internal/market"
	"upbot/internal/notify"
	"upbot/internal/observe"
	"upbot/internal/pipeline"
)

// Builder assembles the application from configuration. The component
// constructors are swappable so tests can inject fakes without touching
// the wiring order.
type Builder struct {
	cfg *config.Config

	exchangeFn func(config.UpbitConfig) (exchange.Exchange, error)
	providerFn func(config.AIConfig) provider.ModelProvider
	storeFn    func(string) (*ledger.Store, error)
}

type BuilderOption func(*Builder)

func WithExchange(fn func(config.UpbitConfig) (exchange.Exchange, error)) BuilderOption {
	return func(b *Builder) { b.exchangeFn = fn }
}

func WithProvider(fn func(config.AIConfig) provider.ModelProvider) BuilderOption {
	return func(b *Builder) { b.providerFn = fn }
}

func WithStore(fn func(string) (*ledger.Store, error)) BuilderOption {
	return func(b *Builder) { b.storeFn = fn }
}

func NewBuilder(cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:        cfg,
		exchangeFn: buildExchange,
		providerFn: buildProvider,
		storeFn:    ledger.NewStore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildExchange(cfg config.UpbitConfig) (exchange.Exchange, error) {
	return upbit.NewClient(cfg)
}

func buildProvider(cfg config.AIConfig) provider.ModelProvider {
	return &provider.OpenAIChatClient{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (b *Builder) Build() (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	exch, err := b.exchangeFn(cfg.Upbit)
	if err != nil {
		return nil, fmt.Errorf("building exchange client: %w", err)
	}

	news := market.NewNewsService(cfg.News.SerpAPIKey, cfg.News.Query, cfg.News.Limit,
		time.Duration(cfg.News.TimeoutSeconds)*time.Second)
	sentiment := market.NewFearGreedService(time.Duration(cfg.News.TimeoutSeconds) * time.Second)
	charts := chart.NewService(cfg.Chart.Enabled, time.Duration(cfg.Chart.TimeoutSeconds)*time.Second)

	assembler := observe.NewAssembler(observe.AssemblerConfig{
		Symbol:         cfg.Market.Symbol,
		DailyCandles:   cfg.Market.DailyCandles,
		HourlyCandles:  cfg.Market.HourlyCandles,
		FearGreedLimit: cfg.Market.FearGreedLimit,
	}, exch, news, sentiment, charts)

	store, err := b.storeFn(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	instructions, err := decision.NewInstructionSource(cfg.AI.InstructionsPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	requester := decision.NewRequester(
		b.providerFn(cfg.AI),
		instructions,
		store,
		cfg.AI.HistoryLimit,
		cfg.AI.MaxRetries,
		time.Duration(cfg.AI.RetryDelaySeconds)*time.Second,
		cfg.AI.MaxTokens,
	)

	exec := executor.New(exch, cfg.Market.Symbol, cfg.Trading.MinOrderAmount, cfg.Trading.FeeRate)
	orch := pipeline.NewOrchestrator(assembler, requester, exec, store, cfg.Market.Symbol)

	var tg *notify.Telegram
	if cfg.Notify.Telegram.Enabled {
		tg = notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
		if !tg.Enabled() {
			logger.Warnf("telegram enabled but bot_token or chat_id missing, notifications off")
			tg = nil
		}
	}

	return &App{
		cfg:          cfg,
		orchestrator: orch,
		store:        store,
		instructions: instructions,
		telegram:     tg,
	}, nil
}
