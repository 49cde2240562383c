package apihttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"shadowtrade/internal/logger"
)

const (
	colorEquity = "#3b82f6"
	colorCash   = "#34d399"
)

// handleEquityChart 渲染权益曲线页面，直接把 echarts HTML 写回浏览器。
func (r *Router) handleEquityChart(c *gin.Context) {
	if r.Store == nil {
		c.String(http.StatusServiceUnavailable, "持久化未启用，无法绘制权益曲线")
		return
	}
	ctx, cancel := queryContext(c)
	defer cancel()
	points, err := r.Store.EquityCurve(ctx, 0)
	if err != nil {
		logger.Errorf("[api] equity chart failed ip=%s err=%v", c.ClientIP(), err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if len(points) == 0 {
		c.String(http.StatusOK, "还没有权益采样，先等一轮周期跑完")
		return
	}

	xAxis := make([]string, 0, len(points))
	equity := make([]opts.LineData, 0, len(points))
	cash := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		xAxis = append(xAxis, p.At.Format(time.DateTime))
		equity = append(equity, opts.LineData{Value: p.Equity})
		cash = append(cash, opts.LineData{Value: p.Cash})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Equity Curve"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("Equity", equity, charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}))
	line.AddSeries("Cash", cash, charts.WithLineStyleOpts(opts.LineStyle{Color: colorCash, Width: 1}))

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		logger.Errorf("[api] equity chart render failed: %v", err)
	}
}
