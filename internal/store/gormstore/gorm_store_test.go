package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowtrade/internal/store"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "shadowtrade.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStoreOrderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	err := s.SaveOrders(ctx, []store.OrderRecord{
		{OrderID: "o1", CycleID: "c1", Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 150, Fee: 0.15, Strategy: "momentum", Reason: "test", Status: "FILLED", CreatedAt: now},
		{OrderID: "o2", CycleID: "c1", Symbol: "MSFT", Side: "SELL", Quantity: 3, Price: 400, Strategy: "momentum", Status: "REJECTED", CreatedAt: now.Add(time.Second)},
	})
	require.NoError(t, err)

	recs, err := s.ListOrders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// 最新的在前
	assert.Equal(t, "o2", recs[0].OrderID)
	assert.Equal(t, "o1", recs[1].OrderID)
	assert.Equal(t, int64(10), recs[1].Quantity)
	assert.Equal(t, "FILLED", recs[1].Status)
}

func TestGormStoreCycleAndEquity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).Truncate(time.Second)
	err := s.SaveCycle(ctx, store.CycleRecord{
		CycleID: "c1", StartedAt: started, FinishedAt: started.Add(2 * time.Second),
		SymbolsTotal: 3, SymbolsSkipped: 1, OrdersPlaced: 2, OrdersRejected: 1,
		Equity: 10100, Cash: 8500,
	})
	require.NoError(t, err)

	cycles, err := s.ListCycles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, 1, cycles[0].SymbolsSkipped)
	assert.InDelta(t, 10100, cycles[0].Equity, 1e-9)

	for i, eq := range []float64{10000, 10100, 10050} {
		err := s.SaveEquityPoint(ctx, store.EquityPoint{
			CycleID: "c1", At: started.Add(time.Duration(i) * time.Minute), Equity: eq, Cash: 8500,
		})
		require.NoError(t, err)
	}
	points, err := s.EquityCurve(ctx, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)
	// 时间升序
	assert.InDelta(t, 10000, points[0].Equity, 1e-9)
	assert.InDelta(t, 10050, points[2].Equity, 1e-9)
	assert.Equal(t, "[]", points[0].PositionsJSON)
}
