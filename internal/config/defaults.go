package config

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9983"
	defaultTradingCapital   = 10000
	defaultTradingMaxPct    = 0.25
	defaultCycleInterval    = "15m"
	defaultCycleOffset      = 10
	defaultCycleMaxFailures = 5
	defaultMarketProvider   = "binance"
	defaultMarketREST       = "https://api.binance.com"
	defaultMarketBars       = 120
	defaultMarketPeriod     = "1d"
	defaultStorePath        = "data/shadowtrade.db"
	defaultMomentumLookback = 10
	defaultRSIPeriod        = 14
	defaultRSIOverbought    = 70
	defaultRSIOversold      = 30
	defaultMeanRevWindow    = 20
	defaultMeanRevEntryZ    = 2
	defaultMeanRevExitZ     = 0.5
	defaultOrderQty         = 1
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Trading.applyDefaults()
	c.Cycle.applyDefaults()
	c.Strategy.applyDefaults()
	c.Market.applyDefaults()
	c.Store.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (t *TradingConfig) applyDefaults() {
	if t.InitialCapital == 0 {
		t.InitialCapital = defaultTradingCapital
	}
	if t.MaxPositionPct <= 0 || t.MaxPositionPct > 1 {
		t.MaxPositionPct = defaultTradingMaxPct
	}
	if t.FeeRate < 0 {
		t.FeeRate = 0
	}
	if t.SlippageBps < 0 {
		t.SlippageBps = 0
	}
}

func (c *CycleConfig) applyDefaults() {
	if c.Interval == "" {
		c.Interval = defaultCycleInterval
	}
	if c.OffsetSeconds <= 0 {
		c.OffsetSeconds = defaultCycleOffset
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultCycleMaxFailures
	}
}

func (s *StrategyConfig) applyDefaults() {
	if s.Momentum.Lookback <= 0 {
		s.Momentum.Lookback = defaultMomentumLookback
	}
	if s.Momentum.RSIPeriod <= 0 {
		s.Momentum.RSIPeriod = defaultRSIPeriod
	}
	if s.Momentum.Overbought <= 0 {
		s.Momentum.Overbought = defaultRSIOverbought
	}
	if s.Momentum.Oversold <= 0 {
		s.Momentum.Oversold = defaultRSIOversold
	}
	if s.Momentum.OrderQty <= 0 {
		s.Momentum.OrderQty = defaultOrderQty
	}
	if s.MeanReversion.Window <= 0 {
		s.MeanReversion.Window = defaultMeanRevWindow
	}
	if s.MeanReversion.EntryZ <= 0 {
		s.MeanReversion.EntryZ = defaultMeanRevEntryZ
	}
	if s.MeanReversion.ExitZ <= 0 {
		s.MeanReversion.ExitZ = defaultMeanRevExitZ
	}
	if s.MeanReversion.OrderQty <= 0 {
		s.MeanReversion.OrderQty = defaultOrderQty
	}
}

func (m *MarketConfig) applyDefaults() {
	if m.Provider == "" {
		m.Provider = defaultMarketProvider
	}
	if m.RESTBaseURL == "" {
		m.RESTBaseURL = defaultMarketREST
	}
	if m.HistoryBars <= 0 {
		m.HistoryBars = defaultMarketBars
	}
	if m.HistoryPeriod == "" {
		m.HistoryPeriod = defaultMarketPeriod
	}
}

func (s *StoreConfig) applyDefaults() {
	if s.Path == "" {
		s.Path = defaultStorePath
	}
}
