package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// VolatilityBreakout buys when price closes above the previous bar's high
// plus a multiple of ATR, and exits when price closes below the previous
// bar's low minus 2x ATR.
type VolatilityBreakout struct {
	base
}

func NewVolatilityBreakout() *VolatilityBreakout {
	return &VolatilityBreakout{base{
		name:        "Volatility Breakout (ATR)",
		description: "Buy when price breaks above range with ATR confirmation",
		params: map[string]float64{
			"atr_period":     14,
			"atr_multiplier": 1.5,
		},
	}}
}

func (v *VolatilityBreakout) Signals(s *series.Series) []float64 {
	clos := s.Close()
	high := s.High()
	low := s.Low()
	atr := indicators.ATR(high, low, clos, v.intParam("atr_period"))
	mult := v.params["atr_multiplier"]

	signals := make([]float64, len(clos))
	for i := 1; i < len(clos); i++ {
		upperBreakout := high[i-1] + atr[i]*mult
		lowerExit := low[i-1] - atr[i]*2.0
		if clos[i] > upperBreakout {
			signals[i] = 1
		}
		if clos[i] < lowerExit {
			signals[i] = -1
		}
	}
	return latchPositions(signals)
}

func (v *VolatilityBreakout) Params() []Param {
	return []Param{
		{Name: "atr_period", Value: v.params["atr_period"], Type: "int",
			Min: 7, Max: 30, Description: "ATR calculation period"},
		{Name: "atr_multiplier", Value: v.params["atr_multiplier"], Type: "float",
			Min: 0.5, Max: 3.0, Description: "ATR multiplier for breakout"},
	}
}
