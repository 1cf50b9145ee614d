// Package backtest simulates a strategy over a price series: the previous
// bar's signal is applied to the current bar's return, equity compounds from
// the initial capital.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/hashmap-kz/quantd/internal/quant/series"
	"github.com/hashmap-kz/quantd/internal/quant/strategy"
)

const DefaultInitialCapital = 10_000.0

// tradingDaysPerYear is used to annualize the Sharpe ratio.
const tradingDaysPerYear = 252

type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

type Result struct {
	Ticker         string  `json:"ticker"`
	Strategy       string  `json:"strategy"`
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	NetProfit      float64 `json:"net_profit"`
	NetProfitPct   float64 `json:"net_profit_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	WinRatePct     float64 `json:"win_rate_pct"`
	Trades         int     `json:"trades"`

	Equity []EquityPoint `json:"equity,omitempty"`
}

// Run executes the strategy over the series and computes performance metrics.
func Run(s *series.Series, strat strategy.Strategy, initialCapital float64) (*Result, error) {
	if s.Empty() {
		return nil, fmt.Errorf("backtest %s: empty series", s.Ticker)
	}
	if initialCapital <= 0 {
		initialCapital = DefaultInitialCapital
	}

	signals := strat.Signals(s)
	returns := s.PctChange()

	equity := make([]EquityPoint, s.Len())
	stratReturns := make([]float64, 0, s.Len())

	value := initialCapital
	peak := initialCapital
	maxDD := 0.0

	// trade bookkeeping: a trade is a maximal run of a nonzero position
	trades, wins := 0, 0
	inTrade := false
	tradeReturn := 1.0

	closeTrade := func() {
		trades++
		if tradeReturn > 1 {
			wins++
		}
		inTrade = false
		tradeReturn = 1.0
	}

	for i := 0; i < s.Len(); i++ {
		r := 0.0
		if i > 0 && !math.IsNaN(returns[i]) {
			r = signals[i-1] * returns[i]
		}
		stratReturns = append(stratReturns, r)
		value *= 1 + r

		if i > 0 && signals[i-1] != 0 {
			if !inTrade {
				inTrade = true
			}
			tradeReturn *= 1 + r
		} else if inTrade {
			closeTrade()
		}

		if value > peak {
			peak = value
		}
		if peak > 0 {
			dd := (value - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
		equity[i] = EquityPoint{Time: s.Bars[i].Time, Value: value}
	}
	if inTrade {
		closeTrade()
	}

	res := &Result{
		Ticker:         s.Ticker,
		Strategy:       strat.Name(),
		InitialCapital: initialCapital,
		FinalValue:     value,
		NetProfit:      value - initialCapital,
		NetProfitPct:   (value - initialCapital) / initialCapital * 100,
		MaxDrawdownPct: maxDD * 100,
		SharpeRatio:    sharpe(stratReturns),
		Trades:         trades,
		Equity:         equity,
	}
	if trades > 0 {
		res.WinRatePct = float64(wins) / float64(trades) * 100
	}
	return res, nil
}

// sharpe annualizes mean/stddev of per-bar returns (risk-free rate 0).
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	sd := math.Sqrt(variance)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}
