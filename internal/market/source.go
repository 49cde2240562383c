package market

import (
	"context"
	"errors"
)

// ErrUnavailable 表示某个 symbol 的行情本周期取不到。
// 调用方（引擎）应跳过该 symbol，不中断整个周期。
var ErrUnavailable = errors.New("market data unavailable")

type Source interface {
	// GetPrice 返回 symbol 的最新成交价。
	GetPrice(ctx context.Context, symbol string) (Quote, error)

	// GetHistory 返回最近 limit 根 period 周期的 K 线（时间升序）。
	// 不支持历史数据的源返回 ErrUnavailable。
	GetHistory(ctx context.Context, symbol, period string, limit int) ([]Candle, error)
}
