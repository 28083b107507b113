package config

// Config is the root configuration for upbot.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Market   MarketConfig   `mapstructure:"market"`
	Upbit    UpbitConfig    `mapstructure:"upbit"`
	AI       AIConfig       `mapstructure:"ai"`
	News     NewsConfig     `mapstructure:"news"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Trading  TradingConfig  `mapstructure:"trading"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	LLMLog   string `mapstructure:"llm_log_path"`
	HTTPAddr string `mapstructure:"http_addr"` // dashboard bind address
}

type MarketConfig struct {
	Symbol         string `mapstructure:"symbol"` // Upbit market code, e.g. KRW-BTC
	DailyCandles   int    `mapstructure:"daily_candles"`
	HourlyCandles  int    `mapstructure:"hourly_candles"`
	FearGreedLimit int    `mapstructure:"fear_greed_limit"`
}

type UpbitConfig struct {
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AIConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
	HistoryLimit      int    `mapstructure:"history_limit"`
	InstructionsPath  string `mapstructure:"instructions_path"`
	MaxTokens         int    `mapstructure:"max_tokens"`
}

type NewsConfig struct {
	SerpAPIKey     string `mapstructure:"serpapi_key"`
	Query          string `mapstructure:"query"`
	Limit          int    `mapstructure:"limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ChartConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

type TradingConfig struct {
	MinOrderAmount float64 `mapstructure:"min_order_amount"` // quote currency
	FeeRate        float64 `mapstructure:"fee_rate"`         // buy sizing multiplier
}

type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

type ScheduleConfig struct {
	Times          []string `mapstructure:"times"` // local wall clock, "HH:MM"
	RunImmediately bool     `mapstructure:"run_immediately"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}
