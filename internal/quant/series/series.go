// Package series holds OHLCV price history used by indicators, strategies
// and the scoring engine. Columns are float slices; positions that cannot be
// computed yet (indicator warmup) are NaN, and consumers must treat NaN as
// "no value".
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is a single daily candle.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered (ascending by time) bar history for one ticker.
type Series struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

func New(ticker string, bars []Bar) *Series {
	s := &Series{Ticker: ticker, Bars: bars}
	sort.Slice(s.Bars, func(i, j int) bool { return s.Bars[i].Time.Before(s.Bars[j].Time) })
	return s
}

func (s *Series) Len() int { return len(s.Bars) }

func (s *Series) Empty() bool { return len(s.Bars) == 0 }

func (s *Series) Close() []float64  { return s.column(func(b Bar) float64 { return b.Close }) }
func (s *Series) Open() []float64   { return s.column(func(b Bar) float64 { return b.Open }) }
func (s *Series) High() []float64   { return s.column(func(b Bar) float64 { return b.High }) }
func (s *Series) Low() []float64    { return s.column(func(b Bar) float64 { return b.Low }) }
func (s *Series) Volume() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

func (s *Series) column(get func(Bar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = get(b)
	}
	return out
}

// LastClose returns the most recent close price.
func (s *Series) LastClose() (float64, error) {
	if s.Empty() {
		return 0, fmt.Errorf("series %s is empty", s.Ticker)
	}
	return s.Bars[len(s.Bars)-1].Close, nil
}

// Tail returns the last n bars (all bars when n >= Len).
func (s *Series) Tail(n int) []Bar {
	if n >= len(s.Bars) {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// PctChange returns per-bar simple returns; index 0 is NaN.
func (s *Series) PctChange() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		if i == 0 || s.Bars[i-1].Close == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.Bars[i].Close/s.Bars[i-1].Close - 1
	}
	return out
}

// Mean averages the non-NaN values of a column slice; NaN when none.
func Mean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Max returns the maximum of the non-NaN values; NaN when none.
func Max(vals []float64) float64 {
	out := math.NaN()
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) || v > out {
			out = v
		}
	}
	return out
}
