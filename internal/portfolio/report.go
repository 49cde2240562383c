package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report 是绩效汇总。纯派生读：两次调用之间没有写入则输出完全一致。
type Report struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	TotalReturnPct decimal.Decimal `json:"total_return_pct"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL  decimal.Decimal `json:"unrealized_pnl"`
	FeesPaid       decimal.Decimal `json:"fees_paid"`
	PeakEquity     decimal.Decimal `json:"peak_equity"`
	MaxDrawdownPct decimal.Decimal `json:"max_drawdown_pct"`
	Orders         int             `json:"orders"`
	OpenPositions  int             `json:"open_positions"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

var hundred = decimal.NewFromInt(100)

// PerformanceReport 汇总当前组合绩效。
// 初始资金为 0 的组合构造不出来，所以这里的除法总是安全的。
func (p *Portfolio) PerformanceReport() Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	current := p.totalValueLocked()
	unrealized := decimal.Zero
	for _, pos := range p.positions {
		unrealized = unrealized.Add(pos.UnrealizedPnL())
	}
	return Report{
		InitialCapital: p.initialCapital,
		CurrentValue:   current,
		TotalReturnPct: current.Sub(p.initialCapital).Div(p.initialCapital).Mul(hundred),
		RealizedPnL:    p.realizedPnL,
		UnrealizedPnL:  unrealized,
		FeesPaid:       p.feesPaid,
		PeakEquity:     p.peakEquity,
		MaxDrawdownPct: p.maxDrawdown.Mul(hundred),
		Orders:         len(p.orders),
		OpenPositions:  len(p.positions),
		GeneratedAt:    p.now().UTC(),
	}
}

// Snapshot 是给外部读者（HTTP 层、持久化层）的一致性视图。
type Snapshot struct {
	Cash          decimal.Decimal `json:"cash"`
	TotalValue    decimal.Decimal `json:"total_value"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	Positions     []Position      `json:"positions"`
	At            time.Time       `json:"at"`
}

func (p *Portfolio) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	positions := make([]Position, 0, len(p.positions))
	unrealized := decimal.Zero
	for _, pos := range p.positions {
		positions = append(positions, *pos)
		unrealized = unrealized.Add(pos.UnrealizedPnL())
	}
	sortPositions(positions)
	return Snapshot{
		Cash:          p.cash,
		TotalValue:    p.totalValueLocked(),
		RealizedPnL:   p.realizedPnL,
		UnrealizedPnL: unrealized,
		Positions:     positions,
		At:            p.now().UTC(),
	}
}
