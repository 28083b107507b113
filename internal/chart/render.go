// Package chart renders a composite candlestick image of the observed
// market and captures it as a PNG through headless Chrome, so the reasoning
// service can look at the same picture a human trader would.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"upbot/internal/market"
)

const (
	colorBackground  = "#0b1220"
	colorTextPrimary = "#e5e7eb"
	colorTextMuted   = "#9ca3af"
	colorBull        = "#34d399"
	colorBear        = "#f87171"
	colorSMA         = "#3b82f6"
	colorEMA         = "#fbbf24"
	colorDIF         = "#22d3ee"
	colorDEA         = "#fb7185"

	chartWidthPx   = 1600
	klineHeightPx  = 560
	volumeHeightPx = 220
	macdHeightPx   = 220
)

// ImageResult is the rendered chart handed to the observation.
type ImageResult struct {
	Bytes       []byte
	Base64      string
	Description string
}

func (r ImageResult) DataURI() string {
	if r.Base64 == "" && len(r.Bytes) > 0 {
		r.Base64 = base64.StdEncoding.EncodeToString(r.Bytes)
	}
	if r.Base64 == "" {
		return ""
	}
	return "data:image/png;base64," + r.Base64
}

// buildCompositeHTML lays out one kline+volume+MACD block per frame.
func buildCompositeHTML(symbol string, frames []market.Frame) ([]byte, string, error) {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	described := make([]string, 0, len(frames))

	for _, f := range frames {
		candles := f.Series.Candles
		if len(candles) == 0 {
			continue
		}
		interval := f.Series.Interval
		described = append(described, interval)

		minPrice, maxPrice := priceBounds(candles)
		padding := (maxPrice - minPrice) * 0.05
		if padding <= 0 {
			padding = math.Max(1, math.Abs(maxPrice)*0.01)
		}

		kline := charts.NewKLine()
		kline.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{
				Theme:           types.ThemeWesteros,
				Width:           fmt.Sprintf("%dpx", chartWidthPx),
				Height:          fmt.Sprintf("%dpx", klineHeightPx),
				BackgroundColor: colorBackground,
			}),
			charts.WithTitleOpts(opts.Title{
				Title:      fmt.Sprintf("%s %s", strings.ToUpper(symbol), interval),
				Left:       "left",
				Top:        "10",
				TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
			charts.WithXAxisOpts(opts.XAxis{
				Type:      "category",
				AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
				SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
			}),
			charts.WithYAxisOpts(opts.YAxis{
				Scale:     opts.Bool(true),
				Min:       round(minPrice-padding, 2),
				Max:       round(maxPrice+padding, 2),
				AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
				SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextMuted, Opacity: opts.Float(0.2)}},
			}),
		)
		kline.SetSeriesOptions(
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:        colorBull,
				Color0:       colorBear,
				BorderColor:  colorBull,
				BorderColor0: colorBear,
			}),
		)

		xAxis := buildXAxis(candles)
		kline.SetXAxis(xAxis)
		kline.AddSeries("Price", buildKlineSeries(candles))

		overlay := charts.NewLine()
		overlay.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		overlay.SetXAxis(xAxis)
		overlay.AddSeries("SMA10", toLineData(f.Indicators.SMA10, len(candles)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorSMA, Width: 2}))
		overlay.AddSeries("EMA10", toLineData(f.Indicators.EMA10, len(candles)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorEMA, Width: 2}))
		kline.Overlap(overlay)

		page.AddCharts(kline, buildVolumeChart(interval, xAxis, candles), buildMACDChart(interval, xAxis, candles, f.Indicators))
	}

	if len(page.Charts) == 0 {
		return nil, "", fmt.Errorf("no chart data for %s", symbol)
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, "", err
	}
	desc := fmt.Sprintf("%s candlestick chart (%s) with SMA/EMA, volume and MACD",
		strings.ToUpper(symbol), strings.Join(described, ", "))
	return buf.Bytes(), desc, nil
}

func buildXAxis(candles []market.Candle) []string {
	x := make([]string, len(candles))
	for i, c := range candles {
		x[i] = time.UnixMilli(c.Timestamp).UTC().Format("01-02 15:04")
	}
	return x
}

func buildKlineSeries(candles []market.Candle) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(candles))
	for _, c := range candles {
		data = append(data, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	return data
}

func buildVolumeChart(interval string, xAxis []string, candles []market.Candle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Volume %s", interval), Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)}}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextMuted, Opacity: opts.Float(0.15)}},
		}),
	)
	vols := make([]opts.BarData, len(candles))
	for i, c := range candles {
		color := colorBear
		if c.Close >= c.Open {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value:     c.Volume,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.6)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols)
	return bar
}

func buildMACDChart(interval string, xAxis []string, candles []market.Candle, ind market.IndicatorSet) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", macdHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("MACD %s", interval), Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextMuted}}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)}}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextMuted, Opacity: opts.Float(0.15)}},
		}),
	)
	histData := make([]opts.BarData, len(candles))
	for i := range candles {
		v, ok := ind.MACDHist.At(i)
		if !ok {
			histData[i] = opts.BarData{Value: nil}
			continue
		}
		color := colorBear
		if v >= 0 {
			color = colorBull
		}
		histData[i] = opts.BarData{Value: round(v, 4), ItemStyle: &opts.ItemStyle{Color: color}}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("MACD Hist", histData)

	line := charts.NewLine()
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.SetXAxis(xAxis)
	line.AddSeries("DIF", toLineData(ind.MACD, len(candles)), charts.WithLineStyleOpts(opts.LineStyle{Color: colorDIF, Width: 2}))
	line.AddSeries("DEA", toLineData(ind.MACDSignal, len(candles)), charts.WithLineStyleOpts(opts.LineStyle{Color: colorDEA, Width: 2}))
	bar.Overlap(line)
	return bar
}

func toLineData(col market.Column, length int) []opts.LineData {
	line := make([]opts.LineData, length)
	for i := 0; i < length; i++ {
		v, ok := col.At(i)
		if !ok {
			line[i] = opts.LineData{Value: nil}
			continue
		}
		line[i] = opts.LineData{Value: round(v, 4)}
	}
	return line
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

func priceBounds(candles []market.Candle) (minVal, maxVal float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	minVal = candles[0].Low
	maxVal = candles[0].High
	for _, c := range candles {
		if c.Low < minVal {
			minVal = c.Low
		}
		if c.High > maxVal {
			maxVal = c.High
		}
	}
	return minVal, maxVal
}
