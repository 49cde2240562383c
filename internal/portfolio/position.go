package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Position 是某个 symbol 的持仓快照。数量为 0 的持仓不会留在组合里，
// 避免陈旧的成本价影响后续买入的加权平均。
type Position struct {
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// MarketValue = quantity * current_price。
func (p Position) MarketValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPnL = (current_price - avg_price) * quantity。
func (p Position) UnrealizedPnL() decimal.Decimal {
	return p.CurrentPrice.Sub(p.AvgPrice).Mul(decimal.NewFromInt(p.Quantity))
}

func sortPositions(positions []Position) {
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
}
