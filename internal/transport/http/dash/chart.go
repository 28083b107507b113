package dash

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const chartHistoryLimit = 500

// renderChart plots the ledger as three stacked time series: market price
// with average buy price, the quote balance, and the asset balance.
func (h *handler) renderChart(c *gin.Context) {
	records, err := h.reader.Decisions(c.Request.Context(), chartHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Ledger rows come back newest first; the x axis wants oldest first.
	xAxis := make([]string, len(records))
	prices := make([]opts.LineData, len(records))
	avgBuys := make([]opts.LineData, len(records))
	quotes := make([]opts.LineData, len(records))
	assets := make([]opts.LineData, len(records))
	for i, rec := range records {
		j := len(records) - 1 - i
		xAxis[j] = time.UnixMilli(rec.Timestamp).UTC().Format("01-02 15:04")
		prices[j] = opts.LineData{Value: rec.AssetQuotePrice}
		avgBuys[j] = lineValueOrGap(rec.AssetAvgBuyPrice)
		quotes[j] = opts.LineData{Value: rec.QuoteBalance}
		assets[j] = opts.LineData{Value: rec.AssetBalance}
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		newLedgerLine(h.symbol+" price", xAxis,
			series{"Price", prices}, series{"Avg buy", avgBuys}),
		newLedgerLine("Quote balance", xAxis, series{"Quote", quotes}),
		newLedgerLine("Asset balance", xAxis, series{"Asset", assets}),
	)

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type series struct {
	name string
	data []opts.LineData
}

func newLedgerLine(title string, xAxis []string, all ...series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "1200px",
			Height: "360px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(xAxis)
	for _, s := range all {
		line.AddSeries(s.name, s.data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func lineValueOrGap(v float64) opts.LineData {
	if v == 0 {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: v}
}
