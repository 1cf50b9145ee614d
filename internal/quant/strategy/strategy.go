// Package strategy implements the trading strategies behind the dashboard's
// backtesting view, and the registry used to create them by key.
//
// A strategy turns a price series into a per-bar signal slice:
// 1 = long, -1 = short/exit, 0 = flat. Trend-following strategies latch the
// position (a buy stays 1 until the exit condition fires); level-based ones
// (RSI, Bollinger breakout) emit raw levels.
package strategy

import (
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

type Param struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Type        string  `json:"type"` // "int" or "float"
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

type Strategy interface {
	Name() string
	Description() string

	// Params returns the parameter schema for UI generation.
	Params() []Param

	// SetParams updates known parameters; unknown keys are ignored.
	SetParams(params map[string]float64)

	// Signals computes the per-bar signal slice for the series.
	Signals(s *series.Series) []float64
}

// base carries the common name/description/parameter plumbing.
type base struct {
	name        string
	description string
	params      map[string]float64
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }

func (b *base) SetParams(params map[string]float64) {
	for k, v := range params {
		if _, ok := b.params[k]; ok {
			b.params[k] = v
		}
	}
}

func (b *base) intParam(key string) int { return int(b.params[key]) }

// latchPositions converts raw buy/sell events into held positions:
// a 1 keeps the position long until a -1 flattens it.
func latchPositions(signals []float64) []float64 {
	position := 0.0
	for i, s := range signals {
		switch s {
		case 1:
			position = 1
		case -1:
			position = 0
		}
		signals[i] = position
	}
	return signals
}
