package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the YAML config at path, overlays secret material from the
// environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Secrets never live in the YAML file; environment wins when present.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("UPBIT_ACCESS_KEY")); v != "" {
		cfg.Upbit.AccessKey = v
	}
	if v := strings.TrimSpace(os.Getenv("UPBIT_SECRET_KEY")); v != "" {
		cfg.Upbit.SecretKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.AI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SERPAPI_API_KEY")); v != "" {
		cfg.News.SerpAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Notify.Telegram.BotToken = v
	}
}
