package config

import "time"

// Config 是 shadowtrade 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Trading   TradingConfig   `toml:"trading"`
	Cycle     CycleConfig     `toml:"cycle"`
	Watchlist WatchlistConfig `toml:"watchlist"`
	Strategy  StrategyConfig  `toml:"strategy"`
	Market    MarketConfig    `toml:"market"`
	Store     StoreConfig     `toml:"store"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
}

// TradingConfig 控制模拟资金与成交模型。
// 手续费与滑点默认关闭（= 0），按需开启。
type TradingConfig struct {
	InitialCapital float64 `toml:"initial_capital"`
	FeeRate        float64 `toml:"fee_rate"`     // 成交额比例，如 0.0004 = 4bps
	SlippageBps    float64 `toml:"slippage_bps"` // 滑点（基点），买入抬价、卖出压价
	MaxPositionPct float64 `toml:"max_position_pct"`
}

type CycleConfig struct {
	Interval       string `toml:"interval"` // "1m" | "15m" | "1h" | "1d"
	OffsetSeconds  int    `toml:"offset_seconds"`
	RunImmediately bool   `toml:"run_immediately"`
	MaxFailures    int    `toml:"max_failures"` // 熔断阈值
}

type WatchlistConfig struct {
	Path    string   `toml:"path"`
	Symbols []string `toml:"symbols"`
}

// StrategyConfig 挂载所有内置策略的参数；Enabled=false 的策略不参与评估。
type StrategyConfig struct {
	Momentum      MomentumConfig      `toml:"momentum"`
	MeanReversion MeanReversionConfig `toml:"mean_reversion"`
}

type MomentumConfig struct {
	Enabled    bool    `toml:"enabled"`
	Lookback   int     `toml:"lookback"`
	RSIPeriod  int     `toml:"rsi_period"`
	Overbought float64 `toml:"overbought"`
	Oversold   float64 `toml:"oversold"`
	OrderQty   int64   `toml:"order_qty"`
}

type MeanReversionConfig struct {
	Enabled  bool    `toml:"enabled"`
	Window   int     `toml:"window"`
	EntryZ   float64 `toml:"entry_z"`
	ExitZ    float64 `toml:"exit_z"`
	OrderQty int64   `toml:"order_qty"`
}

type MarketConfig struct {
	Provider       string             `toml:"provider"` // "binance" | "http" | "static"
	RESTBaseURL    string             `toml:"rest_base_url"`
	QuoteURL       string             `toml:"quote_url"`  // http provider：带 %s 占位的行情地址
	QuotePath      string             `toml:"quote_path"` // http provider：gjson 取价路径
	TimeoutSeconds int                `toml:"timeout_seconds"`
	HistoryBars    int                `toml:"history_bars"`
	HistoryPeriod  string             `toml:"history_period"`
	CachePath      string             `toml:"cache_path"`
	CacheTTLSecs   int                `toml:"cache_ttl_seconds"`
	StaticPrices   map[string]float64 `toml:"static_prices"`
}

func (m MarketConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

func (m MarketConfig) CacheTTL() time.Duration {
	if m.CacheTTLSecs <= 0 {
		return 0
	}
	return time.Duration(m.CacheTTLSecs) * time.Second
}

type StoreConfig struct {
	Path string `toml:"path"`
}
