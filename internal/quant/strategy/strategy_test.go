package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/quantd/internal/quant/series"
)

func testSeries(closes []float64) *series.Series {
	bars := make([]series.Bar, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = series.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return series.New("TEST", bars)
}

func TestLatchPositions(t *testing.T) {
	got := latchPositions([]float64{0, 1, 0, 0, -1, 0, 1, 0})
	assert.Equal(t, []float64{0, 1, 1, 1, 0, 0, 1, 1}, got)
}

func TestSetParamsIgnoresUnknownKeys(t *testing.T) {
	d := NewDualMA()
	d.SetParams(map[string]float64{"short_period": 10, "bogus": 99})
	assert.Equal(t, 10, d.intParam("short_period"))
	_, ok := d.params["bogus"]
	assert.False(t, ok)
}

func TestDualMACross(t *testing.T) {
	d := NewDualMA()
	d.SetParams(map[string]float64{"short_period": 2, "long_period": 4})

	// flat, then a sharp rise pulls the short MA above the long one
	closes := []float64{10, 10, 10, 10, 10, 20, 30, 40}
	signals := d.Signals(testSeries(closes))
	require.Len(t, signals, len(closes))

	assert.Equal(t, 0.0, signals[4])
	// position is held once the cross fires
	assert.Equal(t, 1.0, signals[len(signals)-1])
}

func TestRSIMomentumLevels(t *testing.T) {
	r := NewRSIMomentum()
	r.SetParams(map[string]float64{"period": 3})

	// steady climb pins RSI at 100, well above the overbought level
	up := make([]float64, 10)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	signals := r.Signals(testSeries(up))
	assert.Equal(t, -1.0, signals[len(signals)-1])

	down := make([]float64, 10)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	signals = r.Signals(testSeries(down))
	assert.Equal(t, 1.0, signals[len(signals)-1])
}

func TestSignalsLengthMatchesSeries(t *testing.T) {
	s := testSeries([]float64{1, 2, 3, 4, 5})
	for _, key := range NewRegistry().Keys() {
		strat, err := NewRegistry().Create(key, nil)
		require.NoError(t, err)
		assert.Len(t, strat.Signals(s), s.Len(), "strategy %s", key)
	}
}

func TestRegistryCreateUnknown(t *testing.T) {
	_, err := NewRegistry().Create("nope", nil)
	assert.Error(t, err)
}

func TestRegistryCreateAppliesParams(t *testing.T) {
	r := NewRegistry()
	strat, err := r.Create(KeyRSIMomentum, map[string]float64{"period": 7})
	require.NoError(t, err)

	for _, p := range strat.Params() {
		if p.Name == "period" {
			assert.Equal(t, 7.0, p.Value)
		}
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	err := r.Register("custom", func() Strategy { return NewMomentum() })
	require.NoError(t, err)
	assert.Error(t, r.Register("custom", func() Strategy { return NewMomentum() }))
}

func TestRegistryListAndDescribe(t *testing.T) {
	r := NewRegistry()
	list := r.List()
	assert.Len(t, list, 7)

	info, err := r.Describe(KeyDualMA)
	require.NoError(t, err)
	assert.Equal(t, KeyDualMA, info.Key)
	assert.NotEmpty(t, info.Params)
}
