package config

const (
	defaultSymbol         = "KRW-BTC"
	defaultDailyCandles   = 30
	defaultHourlyCandles  = 24
	defaultFearGreedLimit = 30

	defaultUpbitBaseURL = "https://api.upbit.com"
	defaultAIBaseURL    = "https://api.openai.com/v1"
	defaultAIModel      = "gpt-4o-mini"

	defaultMinOrderAmount = 5000   // KRW
	defaultFeeRate        = 0.9995 // 0.05% taker fee headroom

	defaultMaxRetries   = 5
	defaultRetryDelay   = 5 // seconds
	defaultHistoryLimit = 10

	defaultLedgerPath = "trading_decisions.sqlite"
)

var defaultScheduleTimes = []string{"00:01", "08:01", "16:01"}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8501"
	}
	if c.Market.Symbol == "" {
		c.Market.Symbol = defaultSymbol
	}
	if c.Market.DailyCandles <= 0 {
		c.Market.DailyCandles = defaultDailyCandles
	}
	if c.Market.HourlyCandles <= 0 {
		c.Market.HourlyCandles = defaultHourlyCandles
	}
	if c.Market.FearGreedLimit <= 0 {
		c.Market.FearGreedLimit = defaultFearGreedLimit
	}
	if c.Upbit.BaseURL == "" {
		c.Upbit.BaseURL = defaultUpbitBaseURL
	}
	if c.Upbit.TimeoutSeconds <= 0 {
		c.Upbit.TimeoutSeconds = 10
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = defaultAIBaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = defaultAIModel
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 120
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = defaultMaxRetries
	}
	if c.AI.RetryDelaySeconds <= 0 {
		c.AI.RetryDelaySeconds = defaultRetryDelay
	}
	if c.AI.HistoryLimit <= 0 {
		c.AI.HistoryLimit = defaultHistoryLimit
	}
	if c.News.Query == "" {
		c.News.Query = "btc"
	}
	if c.News.Limit <= 0 {
		c.News.Limit = 10
	}
	if c.News.TimeoutSeconds <= 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.Chart.TimeoutSeconds <= 0 {
		c.Chart.TimeoutSeconds = 20
	}
	if c.Trading.MinOrderAmount <= 0 {
		c.Trading.MinOrderAmount = defaultMinOrderAmount
	}
	if c.Trading.FeeRate <= 0 {
		c.Trading.FeeRate = defaultFeeRate
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	if len(c.Schedule.Times) == 0 {
		c.Schedule.Times = append([]string(nil), defaultScheduleTimes...)
	}
}
