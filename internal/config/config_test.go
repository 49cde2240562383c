package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
trading:
  initial_capital: 5000
watchlist:
  symbols: [AAPL, MSFT]
strategy:
  momentum:
    enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":9983", cfg.App.HTTPAddr)
	assert.Equal(t, "15m", cfg.Cycle.Interval)
	assert.Equal(t, 5, cfg.Cycle.MaxFailures)
	assert.Equal(t, "binance", cfg.Market.Provider)
	assert.Equal(t, 14, cfg.Strategy.Momentum.RSIPeriod)
	assert.Equal(t, "data/shadowtrade.db", cfg.Store.Path)
}

func TestLoadRejectsNonPositiveCapital(t *testing.T) {
	path := writeConfig(t, `
trading:
  initial_capital: -100
watchlist:
  symbols: [AAPL]
strategy:
  momentum:
    enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_capital")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
cycle:
  interval: soon
watchlist:
  symbols: [AAPL]
strategy:
  momentum:
    enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestLoadRequiresWatchlist(t *testing.T) {
	path := writeConfig(t, `
strategy:
  momentum:
    enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watchlist")
}

func TestLoadRequiresEnabledStrategy(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  symbols: [AAPL]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy")
}

func TestLoadHTTPProviderValidation(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  symbols: [AAPL]
strategy:
  momentum:
    enabled: true
market:
  provider: http
  quote_url: https://example.com/quote
  quote_path: data.last
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%s")

	path = writeConfig(t, `
watchlist:
  symbols: [AAPL]
strategy:
  momentum:
    enabled: true
market:
  provider: http
  quote_url: https://example.com/quote/%s
  quote_path: data.last
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Market.Provider)
}
