package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upbot/internal/market"
)

func TestToLineDataKeepsZeroAfterWarmup(t *testing.T) {
	col := market.Column{Values: []float64{0, 0, 1.5, 0, -2.25}, Warmup: 2}

	line := toLineData(col, 5)
	require.Len(t, line, 5)
	assert.Nil(t, line[0].Value)
	assert.Nil(t, line[1].Value)
	assert.Equal(t, 1.5, line[2].Value)
	assert.Equal(t, 0.0, line[3].Value, "a zero crossing stays on the chart")
	assert.Equal(t, -2.25, line[4].Value)
}

func TestToLineDataEmptyColumn(t *testing.T) {
	line := toLineData(market.Column{}, 3)
	require.Len(t, line, 3)
	for _, p := range line {
		assert.Nil(t, p.Value)
	}
}

func TestBuildCompositeHTMLRendersFrames(t *testing.T) {
	candles := make([]market.Candle, 40)
	for i := range candles {
		price := 100.0 + float64(i%7)
		candles[i] = market.Candle{
			Timestamp: int64(i+1) * 3600000,
			Open:      price, High: price + 3, Low: price - 3, Close: price + 1,
			Volume: 50,
		}
	}
	series := market.Series{Interval: "daily", Candles: candles}
	frame := market.Frame{Series: series, Indicators: market.ComputeIndicators(series)}

	html, desc, err := buildCompositeHTML("KRW-BTC", []market.Frame{frame})
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")
	assert.Contains(t, desc, "KRW-BTC")
	assert.Contains(t, desc, "daily")
}

func TestBuildCompositeHTMLRejectsEmpty(t *testing.T) {
	_, _, err := buildCompositeHTML("KRW-BTC", nil)
	assert.Error(t, err)
}
