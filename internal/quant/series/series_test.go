package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(day int, close float64) Bar {
	return Bar{
		Time:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:  close,
		High:  close,
		Low:   close,
		Close: close,
	}
}

func TestNewSortsByTime(t *testing.T) {
	s := New("TEST", []Bar{bar(2, 3), bar(0, 1), bar(1, 2)})
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 3}, s.Close())
}

func TestLastClose(t *testing.T) {
	s := New("TEST", []Bar{bar(0, 10), bar(1, 20)})
	last, err := s.LastClose()
	require.NoError(t, err)
	assert.Equal(t, 20.0, last)

	_, err = New("EMPTY", nil).LastClose()
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	s := New("TEST", []Bar{bar(0, 1), bar(1, 2), bar(2, 3)})
	assert.Len(t, s.Tail(2), 2)
	assert.Equal(t, 2.0, s.Tail(2)[0].Close)
	assert.Len(t, s.Tail(10), 3)
}

func TestPctChange(t *testing.T) {
	s := New("TEST", []Bar{bar(0, 100), bar(1, 110), bar(2, 99)})
	ret := s.PctChange()
	require.Len(t, ret, 3)
	assert.True(t, math.IsNaN(ret[0]))
	assert.InDelta(t, 0.10, ret[1], 1e-9)
	assert.InDelta(t, -0.10, ret[2], 1e-9)
}

func TestMeanAndMaxSkipNaN(t *testing.T) {
	vals := []float64{1, math.NaN(), 3}
	assert.InDelta(t, 2.0, Mean(vals), 1e-9)
	assert.InDelta(t, 3.0, Max(vals), 1e-9)

	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()})))
	assert.True(t, math.IsNaN(Max(nil)))
}
