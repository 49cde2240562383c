package gormstore

import "gorm.io/datatypes"

type orderModel struct {
	ID            int64   `gorm:"column:id;primaryKey"`
	OrderID       string  `gorm:"column:order_id;uniqueIndex"`
	CycleID       string  `gorm:"column:cycle_id;index"`
	Symbol        string  `gorm:"column:symbol;index"`
	Side          string  `gorm:"column:side"`
	Quantity      int64   `gorm:"column:quantity"`
	Price         float64 `gorm:"column:price"`
	Fee           float64 `gorm:"column:fee"`
	Strategy      string  `gorm:"column:strategy"`
	Reason        string  `gorm:"column:reason"`
	Status        string  `gorm:"column:status"`
	CreatedAtUnix int64   `gorm:"column:created_at"`
}

func (orderModel) TableName() string { return "orders" }

type cycleModel struct {
	ID             int64   `gorm:"column:id;primaryKey"`
	CycleID        string  `gorm:"column:cycle_id;uniqueIndex"`
	StartedAtUnix  int64   `gorm:"column:started_at"`
	FinishedAtUnix int64   `gorm:"column:finished_at"`
	SymbolsTotal   int     `gorm:"column:symbols_total"`
	SymbolsSkipped int     `gorm:"column:symbols_skipped"`
	OrdersPlaced   int     `gorm:"column:orders_placed"`
	OrdersRejected int     `gorm:"column:orders_rejected"`
	Equity         float64 `gorm:"column:equity"`
	Cash           float64 `gorm:"column:cash"`
	Err            string  `gorm:"column:err"`
}

func (cycleModel) TableName() string { return "cycles" }

type equityPointModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	CycleID       string         `gorm:"column:cycle_id;index"`
	AtUnix        int64          `gorm:"column:at;index"`
	Equity        float64        `gorm:"column:equity"`
	Cash          float64        `gorm:"column:cash"`
	RealizedPnL   float64        `gorm:"column:realized_pnl"`
	UnrealizedPnL float64        `gorm:"column:unrealized_pnl"`
	PositionsJSON datatypes.JSON `gorm:"column:positions_json;type:TEXT"`
}

func (equityPointModel) TableName() string { return "equity_points" }
