package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// MeanReversion buys when price drops below the lower Bollinger band
// (oversold) and exits once price crosses back above the middle band.
// While the position is held the signal stays 1; the exit bar is -1.
type MeanReversion struct {
	base
}

func NewMeanReversion() *MeanReversion {
	return &MeanReversion{base{
		name:        "Mean Reversion",
		description: "Buy when price < lower band, Sell at the midline",
		params: map[string]float64{
			"period":  20,
			"std_dev": 2.0,
		},
	}}
}

func (m *MeanReversion) Signals(s *series.Series) []float64 {
	clos := s.Close()
	_, middle, lower := indicators.Bollinger(clos, m.intParam("period"), m.params["std_dev"])

	signals := make([]float64, len(clos))
	holding := false
	for i := 1; i < len(clos); i++ {
		if !holding {
			if clos[i] < lower[i] {
				signals[i] = 1
				holding = true
			}
			continue
		}
		if clos[i] > middle[i] {
			signals[i] = -1
			holding = false
		} else {
			signals[i] = 1
		}
	}
	return signals
}

func (m *MeanReversion) Params() []Param {
	return []Param{
		{Name: "period", Value: m.params["period"], Type: "int",
			Min: 5, Max: 50, Description: "Lookback period for Bollinger Bands"},
		{Name: "std_dev", Value: m.params["std_dev"], Type: "float",
			Min: 1.0, Max: 3.0, Description: "Standard deviation multiplier"},
	}
}
