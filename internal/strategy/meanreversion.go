package strategy

import (
	"context"

	"shadowtrade/internal/analysis/indicator"
	"shadowtrade/internal/logger"
	"shadowtrade/internal/market"
)

// MeanReversion 均值回归：价格偏离 SMA 超过 EntryZ 个标准差时逆势买入，
// 回到均值上方 ExitZ 时卖出。
type MeanReversion struct {
	Window   int
	EntryZ   float64
	ExitZ    float64
	OrderQty int64
}

func NewMeanReversion(window int, entryZ, exitZ float64, orderQty int64) *MeanReversion {
	if window <= 0 {
		window = 20
	}
	if entryZ <= 0 {
		entryZ = 2
	}
	if exitZ <= 0 {
		exitZ = 0.5
	}
	if orderQty <= 0 {
		orderQty = 1
	}
	return &MeanReversion{Window: window, EntryZ: entryZ, ExitZ: exitZ, OrderQty: orderQty}
}

func (m *MeanReversion) Name() string { return "mean_reversion" }

func (m *MeanReversion) Evaluate(ctx context.Context, data market.Data) Signal {
	summary, err := indicator.Compute(data.Candles, indicator.Settings{
		SMAWindow: m.Window,
		ROCPeriod: 1,
	})
	if err != nil {
		logger.Debugf("mean_reversion %s: %v", data.Symbol, err)
		return Hold()
	}
	if summary.StdDev <= 0 {
		// 平盘序列没有可交易的偏离
		return Hold()
	}
	switch {
	case summary.ZScore <= -m.EntryZ:
		return Buy(m.OrderQty, "z=%.2f below -%.1f, price %.2f vs sma %.2f",
			summary.ZScore, m.EntryZ, summary.LastClose, summary.SMA)
	case summary.ZScore >= m.ExitZ:
		return Sell(m.OrderQty, "z=%.2f reverted above %.1f", summary.ZScore, m.ExitZ)
	default:
		return Hold()
	}
}
