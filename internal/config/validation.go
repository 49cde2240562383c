package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。资金 <= 0 属于致命配置错误，进程不应启动。
func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Cycle.validate(); err != nil {
		return err
	}
	if err := c.Watchlist.validate(); err != nil {
		return err
	}
	if err := c.Strategy.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TradingConfig) validate() error {
	if t.InitialCapital <= 0 {
		return fmt.Errorf("trading.initial_capital must be > 0 (got %v)", t.InitialCapital)
	}
	if t.FeeRate >= 0.1 {
		return fmt.Errorf("trading.fee_rate %v looks like a percentage, expected a ratio", t.FeeRate)
	}
	return nil
}

func (c *CycleConfig) validate() error {
	if !validInterval(c.Interval) {
		return fmt.Errorf("cycle.interval invalid: %q", c.Interval)
	}
	return nil
}

func (w *WatchlistConfig) validate() error {
	if strings.TrimSpace(w.Path) == "" && len(w.Symbols) == 0 {
		return fmt.Errorf("watchlist requires a path or seed symbols")
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	if !s.Momentum.Enabled && !s.MeanReversion.Enabled {
		return fmt.Errorf("strategy requires at least one enabled strategy")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Provider)) {
	case "binance", "static":
	case "http":
		if strings.TrimSpace(m.QuoteURL) == "" {
			return fmt.Errorf("market.quote_url required for http provider")
		}
		if !strings.Contains(m.QuoteURL, "%s") {
			return fmt.Errorf("market.quote_url must contain a %%s symbol placeholder")
		}
		if strings.TrimSpace(m.QuotePath) == "" {
			return fmt.Errorf("market.quote_path required for http provider")
		}
	default:
		return fmt.Errorf("market.provider unknown: %q", m.Provider)
	}
	return nil
}

func validInterval(iv string) bool {
	iv = strings.ToLower(strings.TrimSpace(iv))
	if len(iv) < 2 {
		return false
	}
	switch iv[len(iv)-1] {
	case 'm', 'h', 'd', 'w':
	default:
		return false
	}
	for _, r := range iv[:len(iv)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
