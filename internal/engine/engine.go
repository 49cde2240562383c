package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"shadowtrade/internal/config"
	"shadowtrade/internal/logger"
	"shadowtrade/internal/market"
	"shadowtrade/internal/pkg/circuit"
	"shadowtrade/internal/portfolio"
	"shadowtrade/internal/scheduler"
	"shadowtrade/internal/store"
	"shadowtrade/internal/strategy"
	"shadowtrade/internal/watchlist"
)

const fetchConcurrency = 4

// Params 组装一个交易引擎所需的全部依赖。Store 可为 nil（不持久化）。
type Params struct {
	Config     *config.Config
	Portfolio  *portfolio.Portfolio
	Watchlist  *watchlist.Watchlist
	Market     market.Source
	Strategies []strategy.Strategy
	Store      store.Store
}

// Engine 驱动 fetch -> evaluate -> execute -> mark-to-market 的交易周期。
// 单个 symbol 的行情失败只跳过该 symbol，不中断整轮。
type Engine struct {
	cfg        *config.Config
	pf         *portfolio.Portfolio
	wl         *watchlist.Watchlist
	mkt        market.Source
	strategies []strategy.Strategy
	st         store.Store
	breaker    *circuit.Breaker

	nowFn func() time.Time
}

// CycleResult 是一轮周期的执行汇总。
type CycleResult struct {
	CycleID        string
	StartedAt      time.Time
	FinishedAt     time.Time
	SymbolsTotal   int
	SymbolsSkipped int
	OrdersPlaced   int
	OrdersRejected int
	Equity         float64
	Cash           float64
}

func New(p Params) *Engine {
	threshold := 0
	if p.Config != nil {
		threshold = p.Config.Cycle.MaxFailures
	}
	return &Engine{
		cfg:        p.Config,
		pf:         p.Portfolio,
		wl:         p.Watchlist,
		mkt:        p.Market,
		strategies: p.Strategies,
		st:         p.Store,
		breaker:    circuit.NewBreaker("Engine", threshold, 2*time.Minute),
		nowFn:      time.Now,
	}
}

// Run 按配置的周期对齐调度 RunCycle，直到 ctx 取消。
func (e *Engine) Run(ctx context.Context) error {
	interval, ok := scheduler.ParseIntervalDuration(e.cfg.Cycle.Interval)
	if !ok {
		return fmt.Errorf("engine: invalid cycle interval %q", e.cfg.Cycle.Interval)
	}
	offset := time.Duration(e.cfg.Cycle.OffsetSeconds) * time.Second

	sched := scheduler.NewAlignedScheduler(ctx, interval, offset)
	sched.RunImmediately = e.cfg.Cycle.RunImmediately
	sched.Start(func() {
		if !e.breaker.Allow() {
			logger.Warnf("Engine: circuit breaker open, skipping cycle")
			return
		}
		res, err := e.RunCycle(ctx)
		if err != nil {
			logger.Errorf("Engine: cycle %s failed: %v", res.CycleID, err)
			e.breaker.RecordFailure()
			return
		}
		e.breaker.RecordSuccess()
	})
	return ctx.Err()
}

// RunCycle 执行一轮完整周期并返回汇总。
// 返回 error 仅当整轮没有任何 symbol 拿到行情；单 symbol 失败只计入 SymbolsSkipped。
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: e.nowFn().UTC(),
	}
	symbols := e.wl.Symbols()
	result.SymbolsTotal = len(symbols)
	if len(symbols) == 0 {
		logger.Warnf("Engine: watchlist empty, nothing to do cycle=%s", result.CycleID)
		result.FinishedAt = e.nowFn().UTC()
		result.Equity = e.pf.TotalValue().InexactFloat64()
		result.Cash = e.pf.Cash().InexactFloat64()
		return e.finishCycle(ctx, result, nil, "")
	}

	logger.Infof("Engine: cycle start id=%s symbols=%d", result.CycleID, len(symbols))

	snapshots := e.fetchAll(ctx, symbols)
	result.SymbolsSkipped = len(symbols) - len(snapshots)

	var records []store.OrderRecord
	for _, sym := range symbols {
		data, ok := snapshots[sym]
		if !ok {
			continue
		}
		placed, rejected, recs := e.evaluateAndExecute(ctx, result.CycleID, data)
		result.OrdersPlaced += placed
		result.OrdersRejected += rejected
		records = append(records, recs...)
	}

	e.pf.MarkToMarket(func(symbol string) (float64, bool) {
		data, ok := snapshots[symbol]
		if !ok {
			return 0, false
		}
		return data.Quote.Price, true
	})

	result.FinishedAt = e.nowFn().UTC()
	result.Equity = e.pf.TotalValue().InexactFloat64()
	result.Cash = e.pf.Cash().InexactFloat64()

	var cycleErr error
	if len(snapshots) == 0 {
		cycleErr = fmt.Errorf("engine: all %d symbols unavailable", len(symbols))
	}

	errMsg := ""
	if cycleErr != nil {
		errMsg = cycleErr.Error()
	}
	res, err := e.finishCycle(ctx, result, records, errMsg)
	if cycleErr != nil {
		return res, cycleErr
	}
	logger.Infof("Engine: cycle end id=%s placed=%d rejected=%d skipped=%d equity=%.2f duration=%s",
		res.CycleID, res.OrdersPlaced, res.OrdersRejected, res.SymbolsSkipped,
		res.Equity, res.FinishedAt.Sub(res.StartedAt).Truncate(time.Millisecond))
	return res, err
}

// fetchAll 并发拉取行情。拿不到最新价的 symbol 整体跳过；
// 拿到价但没有 K 线历史的保留报价，策略侧自行降级。
func (e *Engine) fetchAll(ctx context.Context, symbols []string) map[string]market.Data {
	var mu sync.Mutex
	snapshots := make(map[string]market.Data, len(symbols))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for _, sym := range symbols {
		sym := sym
		group.Go(func() error {
			quote, err := e.mkt.GetPrice(gctx, sym)
			if err != nil {
				if errors.Is(err, market.ErrUnavailable) {
					logger.Warnf("Engine: 行情不可用，跳过 symbol=%s: %v", sym, err)
				} else {
					logger.Errorf("Engine: quote fetch failed symbol=%s: %v", sym, err)
				}
				return nil
			}
			data := market.Data{Symbol: sym, Quote: quote}
			bars := e.cfg.Market.HistoryBars
			candles, err := e.mkt.GetHistory(gctx, sym, e.cfg.Market.HistoryPeriod, bars)
			if err != nil {
				logger.Debugf("Engine: no history for symbol=%s: %v", sym, err)
			} else {
				data.Candles = candles
			}
			mu.Lock()
			snapshots[sym] = data
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return snapshots
}

// evaluateAndExecute 按配置顺序跑全部策略，每个非 Hold 信号都转成一笔订单请求。
func (e *Engine) evaluateAndExecute(ctx context.Context, cycleID string, data market.Data) (placed, rejected int, records []store.OrderRecord) {
	for _, strat := range e.strategies {
		sig := strat.Evaluate(ctx, data)
		if sig.Action == strategy.ActionHold {
			continue
		}
		logger.Infof("Engine: signal symbol=%s strategy=%s action=%s qty=%d reason=%q",
			data.Symbol, strat.Name(), sig.Action, sig.Quantity, sig.Reason)
		rec, ok := e.executeSignal(cycleID, strat.Name(), data, sig)
		if rec == nil {
			continue
		}
		records = append(records, *rec)
		if ok {
			placed++
		} else {
			rejected++
		}
	}
	return placed, rejected, records
}

func (e *Engine) executeSignal(cycleID, stratName string, data market.Data, sig strategy.Signal) (*store.OrderRecord, bool) {
	fill := e.fillPrice(data.Quote.Price, sig.Action)
	qty := sig.Quantity

	switch sig.Action {
	case strategy.ActionSell:
		pos, ok := e.pf.Position(data.Symbol)
		if !ok {
			logger.Debugf("Engine: sell signal without position, ignore symbol=%s", data.Symbol)
			return nil, false
		}
		if qty > pos.Quantity {
			qty = pos.Quantity
		}
	case strategy.ActionBuy:
		if pct := e.cfg.Trading.MaxPositionPct; pct > 0 {
			notional := fill.Mul(decimal.NewFromInt(qty))
			limit := e.pf.TotalValue().Mul(decimal.NewFromFloat(pct))
			if notional.GreaterThan(limit) {
				logger.Warnf("Engine: buy exceeds position limit symbol=%s notional=%s limit=%s",
					data.Symbol, notional, limit)
				return e.rejectedRecord(cycleID, stratName, data.Symbol, "BUY", qty, fill, sig.Reason), false
			}
		}
	}

	req := portfolio.OrderRequest{
		Symbol:   data.Symbol,
		Quantity: qty,
		Price:    fill,
		Strategy: stratName,
		Reason:   sig.Reason,
	}
	if sig.Action == strategy.ActionBuy {
		req.Type = portfolio.OrderBuy
	} else {
		req.Type = portfolio.OrderSell
	}

	order, err := e.pf.ExecuteOrder(req)
	if err != nil {
		logger.Warnf("Engine: order rejected symbol=%s side=%s qty=%d: %v",
			data.Symbol, req.Type, qty, err)
		return e.rejectedRecord(cycleID, stratName, data.Symbol, string(req.Type), qty, fill, sig.Reason), false
	}
	return &store.OrderRecord{
		OrderID:   order.ID,
		CycleID:   cycleID,
		Symbol:    order.Symbol,
		Side:      string(order.Type),
		Quantity:  order.Quantity,
		Price:     order.Price.InexactFloat64(),
		Fee:       order.Fee.InexactFloat64(),
		Strategy:  order.Strategy,
		Reason:    order.Reason,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}, true
}

func (e *Engine) rejectedRecord(cycleID, stratName, symbol, side string, qty int64, price decimal.Decimal, reason string) *store.OrderRecord {
	return &store.OrderRecord{
		OrderID:   uuid.NewString(),
		CycleID:   cycleID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price.InexactFloat64(),
		Strategy:  stratName,
		Reason:    reason,
		Status:    string(portfolio.OrderRejected),
		CreatedAt: e.nowFn().UTC(),
	}
}

// fillPrice 在报价上施加滑点：买入抬价、卖出压价。
func (e *Engine) fillPrice(quote float64, action strategy.Action) decimal.Decimal {
	px := decimal.NewFromFloat(quote)
	bps := e.cfg.Trading.SlippageBps
	if bps <= 0 {
		return px
	}
	slip := decimal.NewFromFloat(bps).Div(decimal.NewFromInt(10000))
	if action == strategy.ActionBuy {
		return px.Mul(decimal.NewFromInt(1).Add(slip))
	}
	return px.Mul(decimal.NewFromInt(1).Sub(slip))
}

func (e *Engine) finishCycle(ctx context.Context, result CycleResult, records []store.OrderRecord, errMsg string) (CycleResult, error) {
	if e.st == nil {
		return result, nil
	}
	if err := e.st.SaveOrders(ctx, records); err != nil {
		logger.Errorf("Engine: persist orders failed cycle=%s: %v", result.CycleID, err)
	}
	if err := e.st.SaveCycle(ctx, store.CycleRecord{
		CycleID:        result.CycleID,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		SymbolsTotal:   result.SymbolsTotal,
		SymbolsSkipped: result.SymbolsSkipped,
		OrdersPlaced:   result.OrdersPlaced,
		OrdersRejected: result.OrdersRejected,
		Equity:         result.Equity,
		Cash:           result.Cash,
		Err:            errMsg,
	}); err != nil {
		logger.Errorf("Engine: persist cycle failed cycle=%s: %v", result.CycleID, err)
	}
	positions, err := json.Marshal(e.pf.Positions())
	if err != nil {
		positions = []byte("[]")
	}
	if err := e.st.SaveEquityPoint(ctx, store.EquityPoint{
		CycleID:       result.CycleID,
		At:            result.FinishedAt,
		Equity:        result.Equity,
		Cash:          result.Cash,
		RealizedPnL:   e.pf.RealizedPnL().InexactFloat64(),
		UnrealizedPnL: e.pf.UnrealizedPnL().InexactFloat64(),
		PositionsJSON: string(positions),
	}); err != nil {
		logger.Errorf("Engine: persist equity point failed cycle=%s: %v", result.CycleID, err)
	}
	return result, nil
}
