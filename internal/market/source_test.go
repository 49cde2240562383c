package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceGetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote/AAPL":
			w.Write([]byte(`{"data":{"last":150.25}}`))
		case "/quote/BROKEN":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"data":{}}`))
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/quote/%s", "data.last", 2*time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	quote, err := src.GetPrice(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.InDelta(t, 150.25, quote.Price, 1e-9)

	_, err = src.GetPrice(ctx, "BROKEN")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = src.GetPrice(ctx, "NOPRICE")
	assert.ErrorIs(t, err, ErrUnavailable, "missing gjson path degrades to unavailable")

	_, err = src.GetHistory(ctx, "AAPL", "1h", 100)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewHTTPSourceValidatesArgs(t *testing.T) {
	_, err := NewHTTPSource("", "data.last", 0)
	assert.Error(t, err)
	_, err = NewHTTPSource("https://example.com/quote", "data.last", 0)
	assert.Error(t, err, "missing %s placeholder")
	_, err = NewHTTPSource("https://example.com/quote/%s", "", 0)
	assert.Error(t, err)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(map[string]float64{"aapl": 150})
	ctx := context.Background()

	quote, err := src.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 150, quote.Price, 1e-9)

	_, err = src.GetPrice(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrUnavailable)

	candles, err := src.GetHistory(ctx, "AAPL", "1m", 30)
	require.NoError(t, err)
	require.Len(t, candles, 30)
	assert.InDelta(t, 150, candles[0].Close, 1e-9)
}

func TestCachedSourceFallsBackOnFailure(t *testing.T) {
	cache, err := NewQuoteCache(filepath.Join(t.TempDir(), "quotes.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	inner := NewStaticSource(map[string]float64{"AAPL": 150})
	src := NewCachedSource(inner, cache)
	ctx := context.Background()

	quote, err := src.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 150, quote.Price, 1e-9)

	// 行情源失去报价后应回退到缓存价
	inner.SetPrice("AAPL", 0)
	quote, err = src.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 150, quote.Price, 1e-9)

	// 没有缓存的 symbol 照常失败
	_, err = src.GetPrice(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQuoteCacheTTL(t *testing.T) {
	cache, err := NewQuoteCache(filepath.Join(t.TempDir(), "quotes.db"), 50*time.Millisecond)
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, Quote{Symbol: "AAPL", Price: 150, At: time.Now()}))
	_, ok, err := cache.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok, err = cache.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry must not be served")
}
