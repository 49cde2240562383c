package store

import (
	"context"
	"time"
)

// OrderRecord 是一笔已落账或被拒绝订单的持久化镜像。
type OrderRecord struct {
	OrderID   string
	CycleID   string
	Symbol    string
	Side      string
	Quantity  int64
	Price     float64
	Fee       float64
	Strategy  string
	Reason    string
	Status    string
	CreatedAt time.Time
}

// CycleRecord 汇总一轮交易周期的执行结果。
type CycleRecord struct {
	CycleID        string
	StartedAt      time.Time
	FinishedAt     time.Time
	SymbolsTotal   int
	SymbolsSkipped int
	OrdersPlaced   int
	OrdersRejected int
	Equity         float64
	Cash           float64
	Err            string
}

// EquityPoint 是周期结束时的权益采样，用于绘制权益曲线。
type EquityPoint struct {
	CycleID       string
	At            time.Time
	Equity        float64
	Cash          float64
	RealizedPnL   float64
	UnrealizedPnL float64
	PositionsJSON string
}

// Store 持久化订单审计、周期汇总与权益曲线。
// 实现必须可并发调用：引擎写入的同时 HTTP 侧在读。
type Store interface {
	SaveOrders(ctx context.Context, recs []OrderRecord) error
	ListOrders(ctx context.Context, limit int) ([]OrderRecord, error)
	SaveCycle(ctx context.Context, rec CycleRecord) error
	ListCycles(ctx context.Context, limit int) ([]CycleRecord, error)
	SaveEquityPoint(ctx context.Context, p EquityPoint) error
	EquityCurve(ctx context.Context, limit int) ([]EquityPoint, error)
	Close() error
}
