package market

import "time"

type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Quote 是一次行情采样：最新价 + 采样时间。
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	At     time.Time `json:"at"`
}

// Data 是引擎在一个交易周期内为单个 symbol 收集到的全部行情输入。
// Candles 可能为空（行情源不支持历史数据时），策略需要自行降级为 Hold。
type Data struct {
	Symbol  string
	Quote   Quote
	Candles []Candle
}

func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
