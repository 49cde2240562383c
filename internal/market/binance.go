package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
)

const maxHistoryLimit = 1000

// BinanceSource 基于 go-binance 现货 SDK 实现 Source。
type BinanceSource struct {
	client *binance.Client
}

type BinanceConfig struct {
	RESTBaseURL string
	HTTPTimeout time.Duration
}

func NewBinanceSource(cfg BinanceConfig) *BinanceSource {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(cfg.RESTBaseURL); base != "" {
		client.BaseURL = base
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &BinanceSource{client: client}
}

func (s *BinanceSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	prices, err := s.client.NewListPricesService().Symbol(strings.ToUpper(symbol)).Do(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("binance price %s: %w: %v", symbol, ErrUnavailable, err)
	}
	if len(prices) == 0 {
		return Quote{}, fmt.Errorf("binance price %s: %w", symbol, ErrUnavailable)
	}
	px, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil || px <= 0 {
		return Quote{}, fmt.Errorf("binance price %s: bad payload %q: %w", symbol, prices[0].Price, ErrUnavailable)
	}
	return Quote{Symbol: strings.ToUpper(symbol), Price: px, At: time.Now().UTC()}, nil
}

func (s *BinanceSource) GetHistory(ctx context.Context, symbol, period string, limit int) ([]Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	klines, err := s.client.NewKlinesService().
		Symbol(strings.ToUpper(symbol)).
		Interval(strings.ToLower(period)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w: %v", symbol, period, ErrUnavailable, err)
	}
	out := make([]Candle, 0, len(klines))
	for _, k := range klines {
		c := Candle{OpenTime: k.OpenTime, CloseTime: k.CloseTime}
		c.Open = parseFloat(k.Open)
		c.High = parseFloat(k.High)
		c.Low = parseFloat(k.Low)
		c.Close = parseFloat(k.Close)
		c.Volume = parseFloat(k.Volume)
		if c.Close <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
