package app

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shadowtrade/internal/config"
	"shadowtrade/internal/engine"
	"shadowtrade/internal/logger"
	"shadowtrade/internal/market"
	"shadowtrade/internal/portfolio"
	"shadowtrade/internal/store"
	"shadowtrade/internal/store/gormstore"
	"shadowtrade/internal/strategy"
	apihttp "shadowtrade/internal/transport/http"
	"shadowtrade/internal/watchlist"
)

// Builder 按配置逐层装配依赖。每个 *Fn 都可在测试中替换。
type Builder struct {
	cfg *config.Config

	marketFn func(*config.Config) (market.Source, func(), error)
	storeFn  func(*config.Config) (store.Store, error)
}

type BuilderOption func(*Builder)

// WithMarketSource 替换行情源构造，测试用。
func WithMarketSource(fn func(*config.Config) (market.Source, func(), error)) BuilderOption {
	return func(b *Builder) { b.marketFn = fn }
}

// WithStore 替换持久化构造，测试用。
func WithStore(fn func(*config.Config) (store.Store, error)) BuilderOption {
	return func(b *Builder) { b.storeFn = fn }
}

func NewBuilder(cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:      cfg,
		marketFn: buildMarketSource,
		storeFn:  buildStore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Builder) Build() (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	pf, err := portfolio.New(
		decimal.NewFromFloat(cfg.Trading.InitialCapital),
		portfolio.WithFeeRate(cfg.Trading.FeeRate),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化组合失败: %w", err)
	}

	wl, stopWatch, err := buildWatchlist(cfg)
	if err != nil {
		return nil, err
	}

	src, closeSrc, err := b.marketFn(cfg)
	if err != nil {
		if stopWatch != nil {
			stopWatch()
		}
		return nil, err
	}

	st, err := b.storeFn(cfg)
	if err != nil {
		if stopWatch != nil {
			stopWatch()
		}
		if closeSrc != nil {
			closeSrc()
		}
		return nil, err
	}

	strategies := buildStrategies(cfg.Strategy)
	if len(strategies) == 0 {
		logger.Warnf("没有启用任何策略，引擎只做 mark-to-market")
	}

	eng := engine.New(engine.Params{
		Config:     cfg,
		Portfolio:  pf,
		Watchlist:  wl,
		Market:     src,
		Strategies: strategies,
		Store:      st,
	})

	httpServer, err := apihttp.NewServer(apihttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Portfolio: pf,
		Watchlist: wl,
		Store:     st,
	})
	if err != nil {
		if stopWatch != nil {
			stopWatch()
		}
		if closeSrc != nil {
			closeSrc()
		}
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	return &App{
		cfg:       cfg,
		portfolio: pf,
		watchlist: wl,
		engine:    eng,
		http:      httpServer,
		store:     st,
		cleanup:   []func(){stopWatch, closeSrc},
	}, nil
}

func buildWatchlist(cfg *config.Config) (*watchlist.Watchlist, func(), error) {
	seeds := cfg.Watchlist.Symbols
	path := strings.TrimSpace(cfg.Watchlist.Path)
	if path != "" {
		fromFile, err := watchlist.LoadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("加载 watchlist 失败: %w", err)
		}
		seeds = fromFile
	}
	wl, err := watchlist.New(seeds...)
	if err != nil {
		return nil, nil, fmt.Errorf("watchlist 含非法 symbol: %w", err)
	}
	if path == "" {
		return wl, nil, nil
	}
	stop, err := watchlist.Watch(path, wl)
	if err != nil {
		logger.Warnf("watchlist 热加载不可用: %v", err)
		return wl, nil, nil
	}
	return wl, stop, nil
}

func buildMarketSource(cfg *config.Config) (market.Source, func(), error) {
	var src market.Source
	switch strings.ToLower(strings.TrimSpace(cfg.Market.Provider)) {
	case "", "binance":
		src = market.NewBinanceSource(market.BinanceConfig{
			RESTBaseURL: cfg.Market.RESTBaseURL,
			HTTPTimeout: cfg.Market.Timeout(),
		})
	case "http":
		httpSrc, err := market.NewHTTPSource(cfg.Market.QuoteURL, cfg.Market.QuotePath, cfg.Market.Timeout())
		if err != nil {
			return nil, nil, err
		}
		src = httpSrc
	case "static":
		src = market.NewStaticSource(cfg.Market.StaticPrices)
	default:
		return nil, nil, fmt.Errorf("未知行情 provider: %q", cfg.Market.Provider)
	}

	cachePath := strings.TrimSpace(cfg.Market.CachePath)
	if cachePath == "" {
		return src, nil, nil
	}
	cache, err := market.NewQuoteCache(cachePath, cfg.Market.CacheTTL())
	if err != nil {
		logger.Warnf("行情缓存不可用，直连行情源: %v", err)
		return src, nil, nil
	}
	cached := market.NewCachedSource(src, cache)
	return cached, func() { _ = cache.Close() }, nil
}

func buildStore(cfg *config.Config) (store.Store, error) {
	path := strings.TrimSpace(cfg.Store.Path)
	if path == "" {
		return nil, nil
	}
	return gormstore.New(path)
}

func buildStrategies(cfg config.StrategyConfig) []strategy.Strategy {
	var out []strategy.Strategy
	if cfg.Momentum.Enabled {
		out = append(out, strategy.NewMomentum(
			cfg.Momentum.Lookback,
			cfg.Momentum.RSIPeriod,
			cfg.Momentum.Overbought,
			cfg.Momentum.Oversold,
			cfg.Momentum.OrderQty,
		))
	}
	if cfg.MeanReversion.Enabled {
		out = append(out, strategy.NewMeanReversion(
			cfg.MeanReversion.Window,
			cfg.MeanReversion.EntryZ,
			cfg.MeanReversion.ExitZ,
			cfg.MeanReversion.OrderQty,
		))
	}
	return out
}
