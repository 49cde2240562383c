package strategy

import (
	"context"

	"shadowtrade/internal/analysis/indicator"
	"shadowtrade/internal/logger"
	"shadowtrade/internal/market"
)

// Momentum 追涨杀跌：ROC 为正且 RSI 未超买时买入，
// ROC 转负或 RSI 超买时卖出。
type Momentum struct {
	Lookback   int
	RSIPeriod  int
	Overbought float64
	Oversold   float64
	OrderQty   int64
}

func NewMomentum(lookback, rsiPeriod int, overbought, oversold float64, orderQty int64) *Momentum {
	if lookback <= 0 {
		lookback = 10
	}
	if rsiPeriod <= 0 {
		rsiPeriod = 14
	}
	if overbought <= 0 {
		overbought = 70
	}
	if oversold <= 0 {
		oversold = 30
	}
	if orderQty <= 0 {
		orderQty = 1
	}
	return &Momentum{
		Lookback:   lookback,
		RSIPeriod:  rsiPeriod,
		Overbought: overbought,
		Oversold:   oversold,
		OrderQty:   orderQty,
	}
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Evaluate(ctx context.Context, data market.Data) Signal {
	summary, err := indicator.Compute(data.Candles, indicator.Settings{
		SMAWindow: m.Lookback,
		RSIPeriod: m.RSIPeriod,
		ROCPeriod: m.Lookback,
	})
	if err != nil {
		logger.Debugf("momentum %s: %v", data.Symbol, err)
		return Hold()
	}
	switch {
	case summary.ROC > 0 && summary.RSI < m.Overbought && summary.RSI > m.Oversold:
		return Buy(m.OrderQty, "roc=%.2f%% rsi=%.1f uptrend intact", summary.ROC, summary.RSI)
	case summary.RSI >= m.Overbought:
		return Sell(m.OrderQty, "rsi=%.1f overbought (>=%.0f)", summary.RSI, m.Overbought)
	case summary.ROC < 0:
		return Sell(m.OrderQty, "roc=%.2f%% momentum lost", summary.ROC)
	default:
		return Hold()
	}
}
