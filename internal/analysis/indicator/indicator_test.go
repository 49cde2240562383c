package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowtrade/internal/market"
)

func candles(closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Close: c}
	}
	return out
}

func TestComputeBasics(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s, err := Compute(candles(closes), Settings{SMAWindow: 10, RSIPeriod: 14, ROCPeriod: 10})
	require.NoError(t, err)

	assert.InDelta(t, 139, s.LastClose, 1e-9)
	// 最后 10 根收盘 130..139 的均值
	assert.InDelta(t, 134.5, s.SMA, 1e-9)
	assert.Greater(t, s.ROC, 0.0)
	assert.Greater(t, s.RSI, 50.0, "单边上涨的 RSI 必然偏高")
	assert.Greater(t, s.ZScore, 0.0)
	assert.Equal(t, 40, s.Bars)
}

func TestComputeDipHasNegativeZScore(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 85

	s, err := Compute(candles(closes), Settings{SMAWindow: 20})
	require.NoError(t, err)
	assert.Less(t, s.ZScore, -1.0)
}

func TestComputeInsufficientBars(t *testing.T) {
	_, err := Compute(candles([]float64{1, 2, 3}), Settings{SMAWindow: 20})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candles")
}
