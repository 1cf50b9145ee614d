package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// DualMA buys on the Golden Cross (short SMA crossing above long SMA) and
// flattens on the Death Cross.
type DualMA struct {
	base
}

func NewDualMA() *DualMA {
	return &DualMA{base{
		name:        "Dual MA (Golden Cross)",
		description: "Buy on Golden Cross (SMA50 > SMA200), sell on Death Cross",
		params: map[string]float64{
			"short_period": 50,
			"long_period":  200,
		},
	}}
}

func (d *DualMA) Signals(s *series.Series) []float64 {
	clos := s.Close()
	maShort := indicators.SMA(clos, d.intParam("short_period"))
	maLong := indicators.SMA(clos, d.intParam("long_period"))

	signals := make([]float64, len(clos))
	for i := 1; i < len(clos); i++ {
		// NaN comparisons are false, so warmup bars stay 0
		if maShort[i] > maLong[i] && maShort[i-1] <= maLong[i-1] {
			signals[i] = 1
		}
		if maShort[i] < maLong[i] && maShort[i-1] >= maLong[i-1] {
			signals[i] = -1
		}
	}
	return latchPositions(signals)
}

func (d *DualMA) Params() []Param {
	return []Param{
		{Name: "short_period", Value: d.params["short_period"], Type: "int",
			Min: 10, Max: 100, Description: "Short-term MA period"},
		{Name: "long_period", Value: d.params["long_period"], Type: "int",
			Min: 100, Max: 300, Description: "Long-term MA period"},
	}
}
