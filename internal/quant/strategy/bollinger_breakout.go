package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// BollingerBreakout goes long when price closes above the upper band and
// short when it closes below the lower band. Signals are raw levels.
type BollingerBreakout struct {
	base
}

func NewBollingerBreakout() *BollingerBreakout {
	return &BollingerBreakout{base{
		name:        "Bollinger Band Breakout",
		description: "Buy when price > upper band, Sell when price < lower band",
		params: map[string]float64{
			"period":  20,
			"std_dev": 2.0,
		},
	}}
}

func (b *BollingerBreakout) Signals(s *series.Series) []float64 {
	clos := s.Close()
	upper, _, lower := indicators.Bollinger(clos, b.intParam("period"), b.params["std_dev"])

	signals := make([]float64, len(clos))
	for i := range clos {
		switch {
		case clos[i] > upper[i]:
			signals[i] = 1
		case clos[i] < lower[i]:
			signals[i] = -1
		}
	}
	return signals
}

func (b *BollingerBreakout) Params() []Param {
	return []Param{
		{Name: "period", Value: b.params["period"], Type: "int",
			Min: 5, Max: 50, Description: "Lookback period for Bollinger Bands"},
		{Name: "std_dev", Value: b.params["std_dev"], Type: "float",
			Min: 1.0, Max: 3.0, Description: "Standard deviation multiplier"},
	}
}
