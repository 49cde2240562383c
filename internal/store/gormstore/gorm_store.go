package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shadowtrade/internal/store"
)

// GormStore 用 Gorm + SQLite 落地订单审计、周期汇总与权益曲线。
type GormStore struct {
	db *gorm.DB
}

var _ store.Store = (*GormStore)(nil)

func New(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 数据库路径不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&orderModel{}, &cycleModel{}, &equityPointModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a small amount of parallelism for concurrent HTTP reads
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) SaveOrders(ctx context.Context, recs []store.OrderRecord) error {
	if s == nil || s.db == nil || len(recs) == 0 {
		return nil
	}
	models := make([]orderModel, 0, len(recs))
	for _, rec := range recs {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		models = append(models, orderModel{
			OrderID:       rec.OrderID,
			CycleID:       rec.CycleID,
			Symbol:        rec.Symbol,
			Side:          rec.Side,
			Quantity:      rec.Quantity,
			Price:         rec.Price,
			Fee:           rec.Fee,
			Strategy:      rec.Strategy,
			Reason:        rec.Reason,
			Status:        rec.Status,
			CreatedAtUnix: createdAt.Unix(),
		})
	}
	return s.db.WithContext(ctx).Create(&models).Error
}

func (s *GormStore) ListOrders(ctx context.Context, limit int) ([]store.OrderRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []orderModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	recs := make([]store.OrderRecord, 0, len(models))
	for _, m := range models {
		recs = append(recs, store.OrderRecord{
			OrderID:   m.OrderID,
			CycleID:   m.CycleID,
			Symbol:    m.Symbol,
			Side:      m.Side,
			Quantity:  m.Quantity,
			Price:     m.Price,
			Fee:       m.Fee,
			Strategy:  m.Strategy,
			Reason:    m.Reason,
			Status:    m.Status,
			CreatedAt: time.Unix(m.CreatedAtUnix, 0),
		})
	}
	return recs, nil
}

func (s *GormStore) SaveCycle(ctx context.Context, rec store.CycleRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	model := cycleModel{
		CycleID:        rec.CycleID,
		StartedAtUnix:  rec.StartedAt.Unix(),
		FinishedAtUnix: rec.FinishedAt.Unix(),
		SymbolsTotal:   rec.SymbolsTotal,
		SymbolsSkipped: rec.SymbolsSkipped,
		OrdersPlaced:   rec.OrdersPlaced,
		OrdersRejected: rec.OrdersRejected,
		Equity:         rec.Equity,
		Cash:           rec.Cash,
		Err:            rec.Err,
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

func (s *GormStore) ListCycles(ctx context.Context, limit int) ([]store.CycleRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	q := s.db.WithContext(ctx).Order("started_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []cycleModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	recs := make([]store.CycleRecord, 0, len(models))
	for _, m := range models {
		recs = append(recs, store.CycleRecord{
			CycleID:        m.CycleID,
			StartedAt:      time.Unix(m.StartedAtUnix, 0),
			FinishedAt:     time.Unix(m.FinishedAtUnix, 0),
			SymbolsTotal:   m.SymbolsTotal,
			SymbolsSkipped: m.SymbolsSkipped,
			OrdersPlaced:   m.OrdersPlaced,
			OrdersRejected: m.OrdersRejected,
			Equity:         m.Equity,
			Cash:           m.Cash,
			Err:            m.Err,
		})
	}
	return recs, nil
}

func (s *GormStore) SaveEquityPoint(ctx context.Context, p store.EquityPoint) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	positions := strings.TrimSpace(p.PositionsJSON)
	if positions == "" {
		positions = "[]"
	}
	model := equityPointModel{
		CycleID:       p.CycleID,
		AtUnix:        p.At.Unix(),
		Equity:        p.Equity,
		Cash:          p.Cash,
		RealizedPnL:   p.RealizedPnL,
		UnrealizedPnL: p.UnrealizedPnL,
		PositionsJSON: datatypes.JSON(positions),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

func (s *GormStore) EquityCurve(ctx context.Context, limit int) ([]store.EquityPoint, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	q := s.db.WithContext(ctx).Order("at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []equityPointModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	points := make([]store.EquityPoint, 0, len(models))
	for _, m := range models {
		points = append(points, store.EquityPoint{
			CycleID:       m.CycleID,
			At:            time.Unix(m.AtUnix, 0),
			Equity:        m.Equity,
			Cash:          m.Cash,
			RealizedPnL:   m.RealizedPnL,
			UnrealizedPnL: m.UnrealizedPnL,
			PositionsJSON: string(m.PositionsJSON),
		})
	}
	return points, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
