package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPortfolio(t *testing.T, capital int64, opts ...Option) *Portfolio {
	t.Helper()
	p, err := New(decimal.NewFromInt(capital), opts...)
	require.NoError(t, err)
	return p
}

func buy(symbol string, qty int64, price float64) OrderRequest {
	return OrderRequest{Symbol: symbol, Type: OrderBuy, Quantity: qty, Price: decimal.NewFromFloat(price), Strategy: "test"}
}

func sell(symbol string, qty int64, price float64) OrderRequest {
	return OrderRequest{Symbol: symbol, Type: OrderSell, Quantity: qty, Price: decimal.NewFromFloat(price), Strategy: "test"}
}

func TestNew_RejectsNonPositiveCapital(t *testing.T) {
	_, err := New(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidCapital)

	_, err = New(decimal.NewFromInt(-100))
	assert.ErrorIs(t, err, ErrInvalidCapital)
}

func TestExecuteOrder_RejectsInvalidParams(t *testing.T) {
	p := newTestPortfolio(t, 10000)

	cases := []OrderRequest{
		{Symbol: "AAPL", Type: OrderBuy, Quantity: 0, Price: decimal.NewFromInt(10)},
		{Symbol: "AAPL", Type: OrderBuy, Quantity: -1, Price: decimal.NewFromInt(10)},
		{Symbol: "AAPL", Type: OrderBuy, Quantity: 1, Price: decimal.Zero},
		{Symbol: "AAPL", Type: OrderBuy, Quantity: 1, Price: decimal.NewFromInt(-5)},
		{Symbol: "", Type: OrderBuy, Quantity: 1, Price: decimal.NewFromInt(10)},
		{Symbol: "AAPL", Type: "SHORT", Quantity: 1, Price: decimal.NewFromInt(10)},
	}
	for _, req := range cases {
		_, err := p.ExecuteOrder(req)
		assert.ErrorIs(t, err, ErrInvalidOrderParams, "req=%+v", req)
	}
	assert.Empty(t, p.Orders(), "rejected requests must not append orders")
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(10000)))
}

func TestExecuteOrder_InsufficientFunds(t *testing.T) {
	p := newTestPortfolio(t, 100)

	_, err := p.ExecuteOrder(buy("AAPL", 10, 50)) // $500 > $100
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(100)), "cash untouched on rejection")
	assert.Empty(t, p.Orders())
	_, held := p.Position("AAPL")
	assert.False(t, held)
}

func TestExecuteOrder_Oversell(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("X", 5, 10))
	require.NoError(t, err)

	_, err = p.ExecuteOrder(sell("X", 6, 10))
	assert.ErrorIs(t, err, ErrInsufficientShares)

	pos, ok := p.Position("X")
	require.True(t, ok)
	assert.Equal(t, int64(5), pos.Quantity, "position unchanged after rejected oversell")

	// 从未持有的 symbol 直接卖也必须拒绝
	_, err = p.ExecuteOrder(sell("Y", 1, 10))
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestExecuteOrder_WeightedAverage(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("ACME", 10, 100))
	require.NoError(t, err)
	_, err = p.ExecuteOrder(buy("ACME", 10, 200))
	require.NoError(t, err)

	pos, ok := p.Position("ACME")
	require.True(t, ok)
	assert.Equal(t, int64(20), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(decimal.NewFromInt(150)), "avg=%s", pos.AvgPrice)
}

func TestExecuteOrder_RoundTripRestoresCash(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("ACME", 7, 33.5))
	require.NoError(t, err)
	_, err = p.ExecuteOrder(sell("ACME", 7, 33.5))
	require.NoError(t, err)

	assert.True(t, p.Cash().Equal(decimal.NewFromInt(10000)), "cash=%s", p.Cash())
	assert.True(t, p.RealizedPnL().IsZero())
	_, ok := p.Position("ACME")
	assert.False(t, ok, "fully exited position must be removed")
}

func TestExecuteOrder_SellRealizesPnLWithoutTouchingAvg(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("ACME", 10, 100))
	require.NoError(t, err)
	_, err = p.ExecuteOrder(sell("ACME", 4, 120))
	require.NoError(t, err)

	pos, ok := p.Position("ACME")
	require.True(t, ok)
	assert.Equal(t, int64(6), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(decimal.NewFromInt(100)), "partial sell must not move avg price")
	assert.True(t, p.RealizedPnL().Equal(decimal.NewFromInt(80)), "realized=(120-100)*4")
}

func TestExecuteOrder_ConservationOfValue(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	before := p.TotalValue()

	_, err := p.ExecuteOrder(buy("ACME", 10, 150))
	require.NoError(t, err)

	// 无费用模型下，成交本身不创造也不销毁价值
	assert.True(t, p.TotalValue().Equal(before), "total=%s", p.TotalValue())
}

func TestExecuteOrder_FeeDebitedWhenConfigured(t *testing.T) {
	p := newTestPortfolio(t, 10000, WithFeeRate(0.001))
	order, err := p.ExecuteOrder(buy("ACME", 10, 100))
	require.NoError(t, err)

	// 1000 * 0.001 = 1
	assert.True(t, order.Fee.Equal(decimal.NewFromInt(1)), "fee=%s", order.Fee)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(8999)), "cash=%s", p.Cash())

	report := p.PerformanceReport()
	assert.True(t, report.FeesPaid.Equal(decimal.NewFromInt(1)))
}

func TestMarkToMarket_EndToEnd(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("AAPL", 10, 150))
	require.NoError(t, err)

	assert.True(t, p.Cash().Equal(decimal.NewFromInt(8500)))

	p.MarkToMarket(func(symbol string) (float64, bool) {
		if symbol == "AAPL" {
			return 160, true
		}
		return 0, false
	})

	assert.True(t, p.TotalValue().Equal(decimal.NewFromInt(10100)), "total=%s", p.TotalValue())

	report := p.PerformanceReport()
	ret, _ := report.TotalReturnPct.Float64()
	assert.InDelta(t, 1.0, ret, 1e-9)
}

func TestMarkToMarket_MissingPriceKeepsLastMark(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("AAPL", 10, 150))
	require.NoError(t, err)

	p.MarkToMarket(func(string) (float64, bool) { return 0, false })

	pos, _ := p.Position("AAPL")
	assert.True(t, pos.CurrentPrice.Equal(decimal.NewFromInt(150)))
}

func TestPerformanceReport_Idempotent(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := newTestPortfolio(t, 10000, WithClock(func() time.Time { return fixed }))
	_, err := p.ExecuteOrder(buy("AAPL", 10, 150))
	require.NoError(t, err)
	p.MarkToMarket(func(string) (float64, bool) { return 160, true })

	first := p.PerformanceReport()
	second := p.PerformanceReport()
	assert.Equal(t, first, second)
}

func TestCashNeverNegative(t *testing.T) {
	p := newTestPortfolio(t, 1000)
	reqs := []OrderRequest{
		buy("A", 5, 100), // 500
		buy("B", 5, 100), // 500 -> cash 0
		buy("C", 1, 1),   // rejected
		sell("A", 5, 90), // +450
		buy("C", 4, 100), // 400
	}
	for _, req := range reqs {
		if _, err := p.ExecuteOrder(req); err != nil {
			assert.True(t, errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInsufficientShares))
		}
		assert.False(t, p.Cash().IsNegative(), "cash=%s after %+v", p.Cash(), req)
	}
}

func TestOrdersAppendOnlyChronological(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("A", 1, 10))
	require.NoError(t, err)
	_, err = p.ExecuteOrder(buy("B", 1, 10))
	require.NoError(t, err)
	_, err = p.ExecuteOrder(sell("A", 1, 10))
	require.NoError(t, err)

	orders := p.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, "A", orders[0].Symbol)
	assert.Equal(t, "B", orders[1].Symbol)
	assert.Equal(t, OrderSell, orders[2].Type)
	for _, o := range orders {
		assert.Equal(t, OrderFilled, o.Status)
		assert.NotEmpty(t, o.ID)
	}
}

func TestSnapshot_StableOrderAndConsistency(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	for _, sym := range []string{"MSFT", "AAPL", "GOOG"} {
		_, err := p.ExecuteOrder(buy(sym, 1, 100))
		require.NoError(t, err)
	}
	snap := p.Snapshot()
	require.Len(t, snap.Positions, 3)
	assert.Equal(t, "AAPL", snap.Positions[0].Symbol)
	assert.Equal(t, "GOOG", snap.Positions[1].Symbol)
	assert.Equal(t, "MSFT", snap.Positions[2].Symbol)
	assert.True(t, snap.TotalValue.Equal(snap.Cash.Add(decimal.NewFromInt(300))))
}

func TestMaxDrawdownTracking(t *testing.T) {
	p := newTestPortfolio(t, 10000)
	_, err := p.ExecuteOrder(buy("ACME", 100, 50)) // 5000 deployed
	require.NoError(t, err)

	p.MarkToMarket(func(string) (float64, bool) { return 60, true }) // equity 11000
	p.MarkToMarket(func(string) (float64, bool) { return 40, true }) // equity 9000

	report := p.PerformanceReport()
	dd, _ := report.MaxDrawdownPct.Float64()
	// 峰值 11000 回落到 9000 => 回撤 2000/11000 ≈ 18.18%
	assert.InDelta(t, 18.1818, dd, 0.001)
	peak, _ := report.PeakEquity.Float64()
	assert.InDelta(t, 11000, peak, 1e-9)
}
