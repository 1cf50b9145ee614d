package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/quantd/internal/quant/series"
	"github.com/hashmap-kz/quantd/internal/quant/strategy"
)

// fixedStrategy replays a precomputed signal slice.
type fixedStrategy struct {
	signals []float64
}

func (f *fixedStrategy) Name() string                     { return "fixed" }
func (f *fixedStrategy) Description() string              { return "" }
func (f *fixedStrategy) Params() []strategy.Param         { return nil }
func (f *fixedStrategy) SetParams(map[string]float64)     {}
func (f *fixedStrategy) Signals(*series.Series) []float64 { return f.signals }

func testSeries(closes []float64) *series.Series {
	bars := make([]series.Bar, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = series.Bar{Time: base.AddDate(0, 0, i), Close: c}
	}
	return series.New("TEST", bars)
}

func TestRunEmptySeries(t *testing.T) {
	_, err := Run(testSeries(nil), &fixedStrategy{}, 1000)
	assert.Error(t, err)
}

func TestRunFlatSignalsKeepCapital(t *testing.T) {
	s := testSeries([]float64{100, 110, 90, 120})
	res, err := Run(s, &fixedStrategy{signals: []float64{0, 0, 0, 0}}, 1000)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.FinalValue)
	assert.Equal(t, 0.0, res.NetProfit)
	assert.Equal(t, 0, res.Trades)
	assert.Equal(t, 0.0, res.MaxDrawdownPct)
}

func TestRunLongCompounds(t *testing.T) {
	// signal applies to the NEXT bar's return: long from bar 0 captures
	// +10% then -10%
	s := testSeries([]float64{100, 110, 99})
	res, err := Run(s, &fixedStrategy{signals: []float64{1, 1, 1}}, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 1000*1.10*0.90, res.FinalValue, 1e-6)
	assert.InDelta(t, -10.0, res.MaxDrawdownPct, 1e-6)
	assert.Equal(t, 1, res.Trades)
	assert.Equal(t, 0.0, res.WinRatePct)
}

func TestRunCountsTradesAndWins(t *testing.T) {
	// two separate trades: the first wins (+10%), the second loses (-10%)
	s := testSeries([]float64{100, 110, 110, 110, 99})
	signals := []float64{1, 0, 0, 1, 0}
	res, err := Run(s, &fixedStrategy{signals: signals}, 1000)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Trades)
	assert.InDelta(t, 50.0, res.WinRatePct, 1e-9)
	assert.InDelta(t, 1000*1.10*0.90, res.FinalValue, 1e-6)
}

func TestRunDefaultsInitialCapital(t *testing.T) {
	s := testSeries([]float64{100, 100})
	res, err := Run(s, &fixedStrategy{signals: []float64{0, 0}}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultInitialCapital, res.InitialCapital)
}

func TestRunEquityCurve(t *testing.T) {
	s := testSeries([]float64{100, 120})
	res, err := Run(s, &fixedStrategy{signals: []float64{1, 0}}, 1000)
	require.NoError(t, err)

	require.Len(t, res.Equity, 2)
	assert.Equal(t, 1000.0, res.Equity[0].Value)
	assert.InDelta(t, 1200.0, res.Equity[1].Value, 1e-6)
}
