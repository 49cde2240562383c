package apihttp

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shadowtrade/internal/logger"
	"shadowtrade/internal/portfolio"
	"shadowtrade/internal/store"
	"shadowtrade/internal/watchlist"
)

// Router 暴露组合/订单/周期相关的查询接口。
type Router struct {
	Portfolio *portfolio.Portfolio
	Watchlist *watchlist.Watchlist
	Store     store.Store
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/portfolio", r.handlePortfolio)
	group.GET("/positions", r.handlePositions)
	group.GET("/orders", r.handleOrders)
	group.GET("/report", r.handleReport)
	group.GET("/watchlist", r.handleWatchlist)
	group.POST("/watchlist/:symbol", r.handleWatchlistAdd)
	group.DELETE("/watchlist/:symbol", r.handleWatchlistRemove)
	group.GET("/cycles", r.handleCycles)
	group.GET("/equity", r.handleEquity)
}

func (r *Router) handlePortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, r.Portfolio.Snapshot())
}

func (r *Router) handlePositions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"positions": r.Portfolio.Positions()})
}

// handleOrders 优先走持久化层（含 REJECTED 审计），没有 store 时退回内存订单史。
func (r *Router) handleOrders(c *gin.Context) {
	limit := parseLimit(c, 100, 500)
	if r.Store != nil {
		ctx, cancel := queryContext(c)
		defer cancel()
		recs, err := r.Store.ListOrders(ctx, limit)
		if err != nil {
			logger.Errorf("[api] list orders failed ip=%s err=%v", c.ClientIP(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": recs})
		return
	}
	orders := r.Portfolio.Orders()
	if limit > 0 && len(orders) > limit {
		orders = orders[len(orders)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (r *Router) handleReport(c *gin.Context) {
	c.JSON(http.StatusOK, r.Portfolio.PerformanceReport())
}

func (r *Router) handleWatchlist(c *gin.Context) {
	if r.Watchlist == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist 未启用"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": r.Watchlist.Symbols()})
}

func (r *Router) handleWatchlistAdd(c *gin.Context) {
	if r.Watchlist == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist 未启用"})
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	if err := r.Watchlist.Add(symbol); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": r.Watchlist.Symbols()})
}

func (r *Router) handleWatchlistRemove(c *gin.Context) {
	if r.Watchlist == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist 未启用"})
		return
	}
	r.Watchlist.Remove(c.Param("symbol"))
	c.JSON(http.StatusOK, gin.H{"symbols": r.Watchlist.Symbols()})
}

func (r *Router) handleCycles(c *gin.Context) {
	if r.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "持久化未启用"})
		return
	}
	ctx, cancel := queryContext(c)
	defer cancel()
	recs, err := r.Store.ListCycles(ctx, parseLimit(c, 50, 500))
	if err != nil {
		logger.Errorf("[api] list cycles failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": recs})
}

func (r *Router) handleEquity(c *gin.Context) {
	if r.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "持久化未启用"})
		return
	}
	ctx, cancel := queryContext(c)
	defer cancel()
	points, err := r.Store.EquityCurve(ctx, parseLimit(c, 0, 0))
	if err != nil {
		logger.Errorf("[api] equity curve failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func parseLimit(c *gin.Context, def, max int) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

func queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 2*time.Second)
}
