package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// MACDCrossover buys when the MACD line crosses above its signal line and
// flattens when it crosses below.
type MACDCrossover struct {
	base
}

func NewMACDCrossover() *MACDCrossover {
	return &MACDCrossover{base{
		name:        "MACD Crossover",
		description: "Buy when MACD crosses above signal line, sell when crosses below",
		params: map[string]float64{
			"fast_period":   12,
			"slow_period":   26,
			"signal_period": 9,
		},
	}}
}

func (m *MACDCrossover) Signals(s *series.Series) []float64 {
	clos := s.Close()
	emaFast := indicators.EMA(clos, m.intParam("fast_period"))
	emaSlow := indicators.EMA(clos, m.intParam("slow_period"))

	macd := make([]float64, len(clos))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal := indicators.EMA(macd, m.intParam("signal_period"))

	signals := make([]float64, len(clos))
	for i := 1; i < len(clos); i++ {
		if macd[i] > macdSignal[i] && macd[i-1] <= macdSignal[i-1] {
			signals[i] = 1
		}
		if macd[i] < macdSignal[i] && macd[i-1] >= macdSignal[i-1] {
			signals[i] = -1
		}
	}
	return latchPositions(signals)
}

func (m *MACDCrossover) Params() []Param {
	return []Param{
		{Name: "fast_period", Value: m.params["fast_period"], Type: "int",
			Min: 5, Max: 20, Description: "Fast EMA period"},
		{Name: "slow_period", Value: m.params["slow_period"], Type: "int",
			Min: 15, Max: 50, Description: "Slow EMA period"},
		{Name: "signal_period", Value: m.params["signal_period"], Type: "int",
			Min: 5, Max: 15, Description: "Signal line period"},
	}
}
