package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func seriesOf(n int) Series {
	candles := make([]Candle, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		price := 100.0 + float64(i%7) // mild oscillation so stoch/rsi are defined
		candles[i] = Candle{
			Timestamp: base.AddDate(0, 0, i).UnixMilli(),
			Open:      price, High: price + 3, Low: price - 3, Close: price + 1,
			Volume: 100,
		}
	}
	return Series{Interval: "daily", Candles: candles}
}

func TestComputeIndicatorsFullSeries(t *testing.T) {
	s := seriesOf(40)
	ind := ComputeIndicators(s)

	assert.Len(t, ind.SMA10.Values, 40)
	assert.Len(t, ind.EMA10.Values, 40)
	assert.Len(t, ind.RSI14.Values, 40)
	assert.Len(t, ind.MACD.Values, 40)
	assert.Len(t, ind.BBUpper.Values, 40)

	// talib leaves the warm-up prefix at zero; At reports it as padding.
	assert.Zero(t, ind.SMA10.Values[8])
	_, ok := ind.SMA10.At(8)
	assert.False(t, ok)
	v, ok := ind.SMA10.At(9)
	assert.True(t, ok)
	assert.NotZero(t, v)
	_, ok = ind.RSI14.At(20)
	assert.True(t, ok)
}

func TestColumnAtKeepsRealZero(t *testing.T) {
	col := Column{Values: []float64{0, 0, 0.5, 0, -0.5}, Warmup: 2}

	_, ok := col.At(1)
	assert.False(t, ok, "warm-up padding")
	v, ok := col.At(3)
	assert.True(t, ok, "a zero past the warm-up is data")
	assert.Zero(t, v)
	_, ok = col.At(5)
	assert.False(t, ok, "out of range")
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	ind := ComputeIndicators(seriesOf(5))
	assert.Empty(t, ind.SMA10.Values)
	assert.Empty(t, ind.RSI14.Values)
	assert.Empty(t, ind.MACD.Values)
	assert.Empty(t, ind.BBUpper.Values)
}

func TestComputeIndicatorsEmptySeries(t *testing.T) {
	ind := ComputeIndicators(Series{Interval: "daily"})
	assert.Empty(t, ind.SMA10.Values)
}

func TestEncodeFrames(t *testing.T) {
	s := seriesOf(12)
	f := Frame{Series: s, Indicators: ComputeIndicators(s)}

	out, err := EncodeFrames(f)
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	rows := doc.Get("daily").Array()
	require.Len(t, rows, 12)

	first := rows[0]
	assert.Equal(t, "2026-01-01 00:00", first.Get("time").String())
	assert.Equal(t, 100.0, first.Get("open").Float())
	assert.Equal(t, gjson.Null, first.Get("sma_10").Type, "warm-up gap is null")
	assert.Equal(t, gjson.Number, rows[11].Get("sma_10").Type)
}

func TestEncodeFramesKeepsZeroCrossings(t *testing.T) {
	s := seriesOf(5)
	f := Frame{Series: s, Indicators: IndicatorSet{
		MACDHist: Column{Values: []float64{0, 0, 0.5, 0, -0.5}, Warmup: 2},
	}}

	out, err := EncodeFrames(f)
	require.NoError(t, err)

	rows := gjson.ParseBytes(out).Get("daily").Array()
	require.Len(t, rows, 5)
	assert.Equal(t, gjson.Null, rows[1].Get("macd_histogram").Type, "warm-up padding")
	assert.Equal(t, gjson.Number, rows[3].Get("macd_histogram").Type, "a real zero survives encoding")
	assert.Equal(t, 0.0, rows[3].Get("macd_histogram").Float())
	assert.Equal(t, -0.5, rows[4].Get("macd_histogram").Float())
}

func TestEncodeFramesRejectsEmptyInterval(t *testing.T) {
	_, err := EncodeFrames(Frame{Series: Series{Candles: seriesOf(3).Candles}})
	assert.Error(t, err)
}
