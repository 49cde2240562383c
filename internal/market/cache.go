package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shadowtrade/internal/logger"

	_ "modernc.org/sqlite"
)

// QuoteCache 把每次成功的报价落到 sqlite。
// 行情源抖动时，TTL 内的缓存价可以顶上，避免整个 symbol 被跳过。
type QuoteCache struct {
	db  *sql.DB
	ttl time.Duration
}

func NewQuoteCache(path string, ttl time.Duration) (*QuoteCache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("quote cache path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	const schema = `CREATE TABLE IF NOT EXISTS quotes (
		symbol TEXT PRIMARY KEY,
		price REAL NOT NULL,
		sampled_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &QuoteCache{db: db, ttl: ttl}, nil
}

func (c *QuoteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *QuoteCache) Put(ctx context.Context, q Quote) error {
	if c == nil || c.db == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO quotes (symbol, price, sampled_at) VALUES (?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, sampled_at = excluded.sampled_at`,
		strings.ToUpper(q.Symbol), q.Price, q.At.UnixMilli())
	return err
}

func (c *QuoteCache) Get(ctx context.Context, symbol string) (Quote, bool, error) {
	if c == nil || c.db == nil {
		return Quote{}, false, nil
	}
	row := c.db.QueryRowContext(ctx,
		`SELECT price, sampled_at FROM quotes WHERE symbol = ?`, strings.ToUpper(symbol))
	var price float64
	var sampledAt int64
	if err := row.Scan(&price, &sampledAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, false, nil
		}
		return Quote{}, false, err
	}
	at := time.UnixMilli(sampledAt)
	if c.ttl > 0 && time.Since(at) > c.ttl {
		return Quote{}, false, nil
	}
	return Quote{Symbol: strings.ToUpper(symbol), Price: price, At: at}, true, nil
}

// CachedSource 包装任意 Source，写穿缓存并在源失败时回退缓存价。
type CachedSource struct {
	inner Source
	cache *QuoteCache
}

func NewCachedSource(inner Source, cache *QuoteCache) *CachedSource {
	return &CachedSource{inner: inner, cache: cache}
}

func (s *CachedSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	quote, err := s.inner.GetPrice(ctx, symbol)
	if err == nil {
		if putErr := s.cache.Put(ctx, quote); putErr != nil {
			logger.Debugf("quote cache put %s failed: %v", symbol, putErr)
		}
		return quote, nil
	}
	cached, ok, cacheErr := s.cache.Get(ctx, symbol)
	if cacheErr != nil {
		logger.Debugf("quote cache get %s failed: %v", symbol, cacheErr)
	}
	if ok {
		logger.Warnf("行情源失败，使用缓存价 symbol=%s price=%v age=%s err=%v",
			symbol, cached.Price, time.Since(cached.At).Truncate(time.Second), err)
		return cached, nil
	}
	return Quote{}, err
}

func (s *CachedSource) GetHistory(ctx context.Context, symbol, period string, limit int) ([]Candle, error) {
	return s.inner.GetHistory(ctx, symbol, period, limit)
}
