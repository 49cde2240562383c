package apihttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shadowtrade/internal/logger"
	"shadowtrade/internal/portfolio"
	"shadowtrade/internal/store"
	"shadowtrade/internal/watchlist"
)

// Server 暴露组合状态、订单审计与绩效报表的只读查询接口。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。Store 可为 nil，相关接口返回 503。
type ServerConfig struct {
	Addr      string
	Portfolio *portfolio.Portfolio
	Watchlist *watchlist.Watchlist
	Store     store.Store
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Portfolio == nil {
		return nil, errors.New("http server requires a portfolio")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9983"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := &Router{Portfolio: cfg.Portfolio, Watchlist: cfg.Watchlist, Store: cfg.Store}
	r.Register(router.Group("/api"))
	router.GET("/chart/equity", r.handleEquityChart)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}
