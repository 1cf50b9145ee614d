package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestSMAShortInput(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMASeededFromFirstValue(t *testing.T) {
	out := EMA([]float64{10, 10, 10, 10}, 3)
	for _, v := range out {
		assert.InDelta(t, 10.0, v, 1e-9)
	}

	// alpha = 2/(3+1) = 0.5
	out = EMA([]float64{2, 4}, 3)
	assert.InDelta(t, 2.0, out[0], 1e-9)
	assert.InDelta(t, 3.0, out[1], 1e-9)
}

func TestBollingerSampleStddev(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	upper, middle, lower := Bollinger(data, 5, 2)

	require.Len(t, middle, 5)
	assert.InDelta(t, 3.0, middle[4], 1e-9)

	// sample stddev of 1..5 is sqrt(2.5)
	sd := math.Sqrt(2.5)
	assert.InDelta(t, 3+2*sd, upper[4], 1e-9)
	assert.InDelta(t, 3-2*sd, lower[4], 1e-9)
	assert.True(t, math.IsNaN(upper[3]))
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i)
	}
	out := RSI(up, 14)
	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-9)
	assert.InDelta(t, 100.0, out[19], 1e-9)

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 42
	}
	out = RSI(flat, 14)
	assert.InDelta(t, 50.0, out[19], 1e-9)
}

func TestRSIRange(t *testing.T) {
	data := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1,
		45.9, 46.3, 46.1, 46.6, 46.2, 46.0, 46.5, 46.2, 46.0, 46.4}
	out := RSI(data, 14)
	for i := 14; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestATR(t *testing.T) {
	high := []float64{12, 13, 14}
	low := []float64{10, 11, 12}
	clos := []float64{11, 12, 13}

	out := ATR(high, low, clos, 2)
	require.Len(t, out, 3)
	assert.True(t, math.IsNaN(out[0]))
	// tr = [2, 2, 2]: high-low dominates gap-less bars
	assert.InDelta(t, 2.0, out[1], 1e-9)
	assert.InDelta(t, 2.0, out[2], 1e-9)
}

func TestROC(t *testing.T) {
	out := ROC([]float64{100, 110, 121}, 1)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 10.0, out[1], 1e-9)
	assert.InDelta(t, 10.0, out[2], 1e-9)

	out = ROC([]float64{100, 0, 50}, 1)
	// zero base yields no reading
	assert.True(t, math.IsNaN(out[2]))
}
