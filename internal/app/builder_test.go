package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowtrade/internal/config"
	"shadowtrade/internal/market"
	"shadowtrade/internal/store"
)

func testAppConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{HTTPAddr: ":0"},
		Trading: config.TradingConfig{InitialCapital: 10000},
		Cycle:   config.CycleConfig{Interval: "15m"},
		Watchlist: config.WatchlistConfig{
			Symbols: []string{"BTCUSDT", "ETHUSDT"},
		},
		Strategy: config.StrategyConfig{
			Momentum: config.MomentumConfig{Enabled: true, OrderQty: 1},
		},
		Market: config.MarketConfig{
			Provider:     "static",
			StaticPrices: map[string]float64{"BTCUSDT": 65000, "ETHUSDT": 3200},
		},
	}
}

func TestBuilderWiresApp(t *testing.T) {
	b := NewBuilder(testAppConfig(), WithStore(func(*config.Config) (store.Store, error) {
		return nil, nil
	}))
	a, err := b.Build()
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Portfolio())
	assert.NotNil(t, a.Engine())
	assert.Equal(t, 2, a.watchlist.Len())
	assert.InDelta(t, 10000, a.Portfolio().TotalValue().InexactFloat64(), 1e-9)
}

func TestBuilderRejectsUnknownProvider(t *testing.T) {
	cfg := testAppConfig()
	cfg.Market.Provider = "telepathy"
	_, err := NewBuilder(cfg, WithStore(func(*config.Config) (store.Store, error) {
		return nil, nil
	})).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestBuilderMarketOverride(t *testing.T) {
	called := false
	b := NewBuilder(testAppConfig(),
		WithMarketSource(func(*config.Config) (market.Source, func(), error) {
			called = true
			return market.NewStaticSource(nil), nil, nil
		}),
		WithStore(func(*config.Config) (store.Store, error) { return nil, nil }),
	)
	a, err := b.Build()
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, called)
}
