package indicator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"shadowtrade/internal/market"
)

// Settings 描述策略侧需要的最小指标配置。
type Settings struct {
	SMAWindow int
	RSIPeriod int
	ROCPeriod int
}

// Summary 是单个 symbol 最近一根 K 线收盘时的指标快照。
type Summary struct {
	LastClose float64
	SMA       float64
	StdDev    float64
	RSI       float64
	ROC       float64 // 百分比
	ZScore    float64 // (close - SMA) / StdDev
	Bars      int
}

// Compute 基于收盘价序列计算指标快照。K 线不足时返回错误，调用方降级为 Hold。
func Compute(candles []market.Candle, cfg Settings) (Summary, error) {
	if cfg.SMAWindow <= 0 {
		cfg.SMAWindow = 20
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.ROCPeriod <= 0 {
		cfg.ROCPeriod = 10
	}
	need := maxInt(cfg.SMAWindow, maxInt(cfg.RSIPeriod+1, cfg.ROCPeriod+1))
	if len(candles) < need {
		return Summary{}, fmt.Errorf("need %d candles, have %d", need, len(candles))
	}
	closes := market.Closes(candles)
	out := Summary{
		LastClose: closes[len(closes)-1],
		SMA:       lastValid(talib.Sma(closes, cfg.SMAWindow)),
		StdDev:    lastValid(talib.StdDev(closes, cfg.SMAWindow, 1.0)),
		RSI:       lastValid(talib.Rsi(closes, cfg.RSIPeriod)),
		ROC:       lastValid(talib.Roc(closes, cfg.ROCPeriod)),
		Bars:      len(candles),
	}
	if out.StdDev > 0 {
		out.ZScore = (out.LastClose - out.SMA) / out.StdDev
	}
	return out, nil
}

// lastValid 取序列末尾最后一个非 NaN/非零值；talib 的 warmup 段填 0。
func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		return v
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
