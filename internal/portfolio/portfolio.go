package portfolio

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio 维护现金、持仓与订单史，是模拟盘的唯一记账边界。
// 单写多读：ExecuteOrder / MarkToMarket 持写锁，读接口持读锁返回拷贝，
// 外部读者（HTTP 层）永远看不到改到一半的状态。
type Portfolio struct {
	mu sync.RWMutex

	cash           decimal.Decimal
	initialCapital decimal.Decimal
	feeRate        decimal.Decimal
	positions      map[string]*Position
	orders         []Order

	realizedPnL decimal.Decimal
	feesPaid    decimal.Decimal
	peakEquity  decimal.Decimal
	maxDrawdown decimal.Decimal // 比例，0~1

	now func() time.Time
}

type Option func(*Portfolio)

// WithFeeRate 设置按成交额计的手续费比例（默认 0，不模拟费用）。
func WithFeeRate(rate float64) Option {
	return func(p *Portfolio) {
		if rate > 0 {
			p.feeRate = decimal.NewFromFloat(rate)
		}
	}
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) Option {
	return func(p *Portfolio) {
		if now != nil {
			p.now = now
		}
	}
}

// New 以给定初始资金构建组合。资金 <= 0 返回 ErrInvalidCapital。
func New(initialCapital decimal.Decimal, opts ...Option) (*Portfolio, error) {
	if initialCapital.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCapital, initialCapital)
	}
	p := &Portfolio{
		cash:           initialCapital,
		initialCapital: initialCapital,
		positions:      make(map[string]*Position),
		peakEquity:     initialCapital,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// ExecuteOrder 校验并模拟一笔成交。接受则原子地更新现金/持仓并追加订单；
// 拒绝则不产生任何状态变化。
func (p *Portfolio) ExecuteOrder(req OrderRequest) (Order, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || req.Quantity <= 0 || req.Price.LessThanOrEqual(decimal.Zero) {
		return Order{}, fmt.Errorf("%w: symbol=%q qty=%d price=%s",
			ErrInvalidOrderParams, req.Symbol, req.Quantity, req.Price)
	}
	if req.Type != OrderBuy && req.Type != OrderSell {
		return Order{}, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrderParams, req.Type)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	qty := decimal.NewFromInt(req.Quantity)
	notional := req.Price.Mul(qty)
	fee := notional.Mul(p.feeRate)

	switch req.Type {
	case OrderBuy:
		cost := notional.Add(fee)
		if cost.GreaterThan(p.cash) {
			return Order{}, fmt.Errorf("%w: need %s, cash %s", ErrInsufficientFunds, cost, p.cash)
		}
		p.cash = p.cash.Sub(cost)
		pos, ok := p.positions[symbol]
		if !ok {
			p.positions[symbol] = &Position{
				Symbol:       symbol,
				Quantity:     req.Quantity,
				AvgPrice:     req.Price,
				CurrentPrice: req.Price,
			}
		} else {
			// 加权平均成本：new_avg = (old_qty*old_avg + fill_qty*fill_price) / (old_qty+fill_qty)
			oldQty := decimal.NewFromInt(pos.Quantity)
			newQty := oldQty.Add(qty)
			pos.AvgPrice = oldQty.Mul(pos.AvgPrice).Add(notional).Div(newQty)
			pos.Quantity += req.Quantity
			pos.CurrentPrice = req.Price
		}
	case OrderSell:
		pos, ok := p.positions[symbol]
		if !ok || req.Quantity > pos.Quantity {
			held := int64(0)
			if ok {
				held = pos.Quantity
			}
			return Order{}, fmt.Errorf("%w: want %d, held %d of %s",
				ErrInsufficientShares, req.Quantity, held, symbol)
		}
		p.cash = p.cash.Add(notional).Sub(fee)
		p.realizedPnL = p.realizedPnL.Add(req.Price.Sub(pos.AvgPrice).Mul(qty)).Sub(fee)
		pos.Quantity -= req.Quantity
		pos.CurrentPrice = req.Price
		if pos.Quantity == 0 {
			delete(p.positions, symbol)
		}
	}
	p.feesPaid = p.feesPaid.Add(fee)

	order := Order{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Symbol:    symbol,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Fee:       fee,
		Strategy:  req.Strategy,
		Reason:    req.Reason,
		Status:    OrderFilled,
		CreatedAt: p.now().UTC(),
	}
	p.orders = append(p.orders, order)
	return order, nil
}

// MarkToMarket 用最新价刷新所有持仓，并推进权益峰值/回撤统计。
// lookup 返回 (price, ok)；取不到价的持仓保留上一次的标记价。
func (p *Portfolio) MarkToMarket(lookup func(symbol string) (float64, bool)) {
	if lookup == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for symbol, pos := range p.positions {
		px, ok := lookup(symbol)
		if !ok || px <= 0 {
			continue
		}
		pos.CurrentPrice = decimal.NewFromFloat(px)
	}
	p.updateEquityStatsLocked()
}

func (p *Portfolio) updateEquityStatsLocked() {
	equity := p.totalValueLocked()
	if equity.GreaterThan(p.peakEquity) {
		p.peakEquity = equity
	}
	if p.peakEquity.IsPositive() {
		drawdown := p.peakEquity.Sub(equity).Div(p.peakEquity)
		if drawdown.GreaterThan(p.maxDrawdown) {
			p.maxDrawdown = drawdown
		}
	}
}

func (p *Portfolio) totalValueLocked() decimal.Decimal {
	total := p.cash
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// TotalValue = cash + Σ quantity*current_price。
func (p *Portfolio) TotalValue() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalValueLocked()
}

func (p *Portfolio) Cash() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash
}

func (p *Portfolio) InitialCapital() decimal.Decimal {
	return p.initialCapital
}

func (p *Portfolio) RealizedPnL() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.realizedPnL
}

func (p *Portfolio) UnrealizedPnL() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := decimal.Zero
	for _, pos := range p.positions {
		total = total.Add(pos.UnrealizedPnL())
	}
	return total
}

// Position 返回单个持仓的拷贝。
func (p *Portfolio) Position(symbol string) (Position, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions 返回全部持仓的拷贝，按 symbol 排序保证输出稳定。
func (p *Portfolio) Positions() []Position {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	sortPositions(out)
	return out
}

// Orders 返回订单史拷贝（追加序 = 时间序）。
func (p *Portfolio) Orders() []Order {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Order, len(p.orders))
	copy(out, p.orders)
	return out
}
