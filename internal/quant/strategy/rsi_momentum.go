package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// RSIMomentum goes long below the oversold level and short above the
// overbought level. Signals are raw levels, not latched positions.
type RSIMomentum struct {
	base
}

func NewRSIMomentum() *RSIMomentum {
	return &RSIMomentum{base{
		name:        "RSI Momentum",
		description: "Buy at RSI < 30, Sell at RSI > 70",
		params: map[string]float64{
			"period":     14,
			"oversold":   30,
			"overbought": 70,
		},
	}}
}

func (r *RSIMomentum) Signals(s *series.Series) []float64 {
	rsi := indicators.RSI(s.Close(), r.intParam("period"))

	signals := make([]float64, len(rsi))
	for i, v := range rsi {
		switch {
		case v < r.params["oversold"]:
			signals[i] = 1
		case v > r.params["overbought"]:
			signals[i] = -1
		}
	}
	return signals
}

func (r *RSIMomentum) Params() []Param {
	return []Param{
		{Name: "period", Value: r.params["period"], Type: "int",
			Min: 5, Max: 30, Description: "RSI calculation period"},
		{Name: "oversold", Value: r.params["oversold"], Type: "int",
			Min: 10, Max: 40, Description: "Oversold threshold (buy signal)"},
		{Name: "overbought", Value: r.params["overbought"], Type: "int",
			Min: 60, Max: 90, Description: "Overbought threshold (sell signal)"},
	}
}
