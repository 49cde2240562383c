package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"shadowtrade/internal/config"
	"shadowtrade/internal/engine"
	"shadowtrade/internal/logger"
	"shadowtrade/internal/portfolio"
	"shadowtrade/internal/store"
	apihttp "shadowtrade/internal/transport/http"
	"shadowtrade/internal/watchlist"
)

// App 负责应用级编排：加载配置→初始化依赖→启动引擎与 HTTP 服务。
type App struct {
	cfg       *config.Config
	portfolio *portfolio.Portfolio
	watchlist *watchlist.Watchlist
	engine    *engine.Engine
	http      *apihttp.Server
	store     store.Store
	cleanup   []func()
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return NewBuilder(cfg).Build()
}

// Run 启动引擎循环与 HTTP 服务，任一出错或 ctx 取消则整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	logger.Infof("shadowtrade 启动 env=%s interval=%s symbols=%d http=%s",
		a.cfg.App.Env, a.cfg.Cycle.Interval, a.watchlist.Len(), a.http.Addr())

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.engine.Run(ctx)
	})

	return group.Wait()
}

// Close 释放持久化与监听资源。可重复调用。
func (a *App) Close() {
	if a == nil {
		return
	}
	for _, fn := range a.cleanup {
		if fn != nil {
			fn()
		}
	}
	a.cleanup = nil
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
}

// Portfolio 暴露底层组合（测试/回放用）。
func (a *App) Portfolio() *portfolio.Portfolio {
	if a == nil {
		return nil
	}
	return a.portfolio
}

// Engine 暴露底层引擎（测试/回放用）。
func (a *App) Engine() *engine.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}
