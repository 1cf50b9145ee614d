package strategy

import (
	"math"

	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// Momentum is a multi-timeframe trend follower: it buys when the main ROC
// exceeds the threshold with short-term confirmation above the 50-bar trend,
// and exits on momentum reversal.
type Momentum struct {
	base
}

func NewMomentum() *Momentum {
	return &Momentum{base{
		name:        "Momentum (Multi-TF)",
		description: "Momentum-based trading with ROC confirmation",
		params: map[string]float64{
			"momentum_period": 20,
			"roc_threshold":   5.0,
		},
	}}
}

func (m *Momentum) Signals(s *series.Series) []float64 {
	clos := s.Close()
	roc := indicators.ROC(clos, m.intParam("momentum_period"))
	rocShort := indicators.ROC(clos, 5)
	sma50 := indicators.SMA(clos, 50)
	threshold := m.params["roc_threshold"]

	signals := make([]float64, len(clos))
	for i := range clos {
		buy := roc[i] > threshold && rocShort[i] > 0 && clos[i] > sma50[i]

		reversal := false
		if i > 0 && !math.IsNaN(roc[i-1]) {
			reversal = rocShort[i] < 0 && roc[i-1] > 0
		}
		sell := roc[i] < -threshold || reversal

		if buy {
			signals[i] = 1
		}
		if sell {
			signals[i] = -1
		}
	}
	return latchPositions(signals)
}

func (m *Momentum) Params() []Param {
	return []Param{
		{Name: "momentum_period", Value: m.params["momentum_period"], Type: "int",
			Min: 10, Max: 50, Description: "Momentum lookback period"},
		{Name: "roc_threshold", Value: m.params["roc_threshold"], Type: "float",
			Min: 2.0, Max: 15.0, Description: "ROC threshold for signals"},
	}
}
