package config

import (
	"fmt"
	"time"
)

func validate(c *Config) error {
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol cannot be empty")
	}
	if c.Trading.FeeRate > 1 {
		return fmt.Errorf("trading.fee_rate must be <= 1 (got %v)", c.Trading.FeeRate)
	}
	for _, t := range c.Schedule.Times {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("schedule.times entry %q is not HH:MM: %w", t, err)
		}
	}
	if c.AI.MaxRetries > 20 {
		return fmt.Errorf("ai.max_retries too large: %d", c.AI.MaxRetries)
	}
	return nil
}
