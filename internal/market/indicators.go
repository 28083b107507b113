package market

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Column is one indicator series aligned index-for-index with the candles
// it was computed from. talib zero-fills the first Warmup slots; those are
// padding, not data.
type Column struct {
	Values []float64
	Warmup int
}

// At returns the value at i and whether it is real data. Warm-up padding,
// NaN and infinities report false; a genuine zero reports true.
func (c Column) At(i int) (float64, bool) {
	if i < c.Warmup || i >= len(c.Values) {
		return 0, false
	}
	v := c.Values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IndicatorSet holds indicator columns for one series. A column may be
// empty when the series is shorter than the indicator period.
type IndicatorSet struct {
	SMA10      Column
	EMA10      Column
	RSI14      Column
	StochK     Column
	StochD     Column
	MACD       Column
	MACDSignal Column
	MACDHist   Column
	BBUpper    Column
	BBMiddle   Column
	BBLower    Column
}

func (s IndicatorSet) Columns() map[string]Column {
	return map[string]Column{
		"sma_10":         s.SMA10,
		"ema_10":         s.EMA10,
		"rsi_14":         s.RSI14,
		"stoch_k":        s.StochK,
		"stoch_d":        s.StochD,
		"macd":           s.MACD,
		"macd_signal":    s.MACDSignal,
		"macd_histogram": s.MACDHist,
		"bb_upper":       s.BBUpper,
		"bb_middle":      s.BBMiddle,
		"bb_lower":       s.BBLower,
	}
}

// talib lookbacks for the study set below. Indexes under the lookback hold
// zero-fill, not values.
const (
	sma10Lookback = 9
	ema10Lookback = 9
	rsi14Lookback = 14
	stochLookback = 17 // (14-1) + (3-1) + (3-1)
	macdLookback  = 33 // (26-1) + (9-1)
	bbLookback    = 19
)

// ComputeIndicators runs the standard study set over a series: SMA10, EMA10,
// RSI14, Stoch(14,3,3), MACD(12,26,9), Bollinger(20,2).
func ComputeIndicators(s Series) IndicatorSet {
	closes := s.Closes()
	var out IndicatorSet
	if len(closes) == 0 {
		return out
	}
	if len(closes) >= 10 {
		out.SMA10 = Column{talib.Sma(closes, 10), sma10Lookback}
		out.EMA10 = Column{talib.Ema(closes, 10), ema10Lookback}
	}
	if len(closes) >= 15 {
		out.RSI14 = Column{talib.Rsi(closes, 14), rsi14Lookback}
	}
	if len(closes) >= 17 {
		k, d := talib.Stoch(s.Highs(), s.Lows(), closes, 14, 3, talib.SMA, 3, talib.SMA)
		out.StochK = Column{k, stochLookback}
		out.StochD = Column{d, stochLookback}
	}
	if len(closes) >= 34 {
		m, sig, hist := talib.Macd(closes, 12, 26, 9)
		out.MACD = Column{m, macdLookback}
		out.MACDSignal = Column{sig, macdLookback}
		out.MACDHist = Column{hist, macdLookback}
	}
	if len(closes) >= 20 {
		upper, middle, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
		out.BBUpper = Column{upper, bbLookback}
		out.BBMiddle = Column{middle, bbLookback}
		out.BBLower = Column{lower, bbLookback}
	}
	return out
}
