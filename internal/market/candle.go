package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Candle is one OHLCV bar. Timestamp is the bar open in epoch milliseconds.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is an ordered (oldest-first) run of candles for one interval.
type Series struct {
	Interval string
	Candles  []Candle
}

func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Frame couples a series with its computed indicator columns, ready for
// prompt serialization.
type Frame struct {
	Series     Series
	Indicators IndicatorSet
}

// EncodeFrames renders the daily and hourly frames as one compact JSON
// document keyed by interval. Row order matches candle order; indicator
// warm-up gaps are emitted as null.
func EncodeFrames(frames ...Frame) ([]byte, error) {
	doc := make(map[string][]map[string]any, len(frames))
	for _, f := range frames {
		rows := make([]map[string]any, 0, len(f.Series.Candles))
		for i, c := range f.Series.Candles {
			row := map[string]any{
				"time":   time.UnixMilli(c.Timestamp).UTC().Format("2006-01-02 15:04"),
				"open":   c.Open,
				"high":   c.High,
				"low":    c.Low,
				"close":  c.Close,
				"volume": c.Volume,
			}
			for name, col := range f.Indicators.Columns() {
				row[name] = jsonValue(col, i)
			}
			rows = append(rows, row)
		}
		if f.Series.Interval == "" {
			return nil, fmt.Errorf("frame has empty interval")
		}
		doc[f.Series.Interval] = rows
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func jsonValue(col Column, i int) any {
	v, ok := col.At(i)
	if !ok {
		return nil
	}
	return math.Round(v*10000) / 10000
}
