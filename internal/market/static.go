package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// StaticSource 返回固定价格，供开发环境与测试使用。
// 历史数据按固定价合成平盘 K 线，足够让策略跑通而不产生信号。
type StaticSource struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewStaticSource(prices map[string]float64) *StaticSource {
	normalized := make(map[string]float64, len(prices))
	for sym, px := range prices {
		normalized[strings.ToUpper(strings.TrimSpace(sym))] = px
	}
	return &StaticSource{prices: normalized}
}

// SetPrice 更新单个 symbol 的报价（测试推进行情用）。
func (s *StaticSource) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	s.prices[strings.ToUpper(strings.TrimSpace(symbol))] = price
	s.mu.Unlock()
}

func (s *StaticSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	s.mu.RLock()
	px, ok := s.prices[strings.ToUpper(strings.TrimSpace(symbol))]
	s.mu.RUnlock()
	if !ok || px <= 0 {
		return Quote{}, fmt.Errorf("static source has no price for %s: %w", symbol, ErrUnavailable)
	}
	return Quote{Symbol: strings.ToUpper(symbol), Price: px, At: time.Now().UTC()}, nil
}

func (s *StaticSource) GetHistory(ctx context.Context, symbol, period string, limit int) ([]Candle, error) {
	quote, err := s.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	step := int64(time.Minute / time.Millisecond)
	now := time.Now().UnixMilli()
	out := make([]Candle, limit)
	for i := range out {
		open := now - int64(limit-i)*step
		out[i] = Candle{
			OpenTime:  open,
			CloseTime: open + step - 1,
			Open:      quote.Price,
			High:      quote.Price,
			Low:       quote.Price,
			Close:     quote.Price,
		}
	}
	return out, nil
}
