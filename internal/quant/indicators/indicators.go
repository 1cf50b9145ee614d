// Package indicators provides the shared technical indicator calculations
// used by all strategies. Every function returns a slice aligned with the
// input; warmup positions (where the lookback window is not yet full) are NaN.
package indicators

import (
	"math"
)

// SMA computes a simple moving average over the given period.
func SMA(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) < period {
		return out
	}
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= period {
			sum -= data[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes an exponential moving average with the given span
// (alpha = 2/(span+1), seeded from the first value).
func EMA(data []float64, span int) []float64 {
	out := nanSlice(len(data))
	if span <= 0 || len(data) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = alpha*data[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Bollinger computes Bollinger bands: SMA(period) +/- stdDev standard
// deviations of the same window.
func Bollinger(data []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(data, period)
	upper = nanSlice(len(data))
	lower = nanSlice(len(data))
	if period <= 1 || len(data) < period {
		return upper, middle, lower
	}
	for i := period - 1; i < len(data); i++ {
		m := middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := data[j] - m
			variance += d * d
		}
		// sample stddev, matching rolling(...).std()
		sd := math.Sqrt(variance / float64(period-1))
		upper[i] = m + sd*stdDev
		lower[i] = m - sd*stdDev
	}
	return upper, middle, lower
}

// RSI computes the Relative Strength Index: the first value is seeded with a
// simple average of gains/losses over the period, subsequent values use
// Wilder's smoothing.
func RSI(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 || len(data) <= period {
		return out
	}

	gains := make([]float64, len(data))
	losses := make([]float64, len(data))
	for i := 1; i < len(data); i++ {
		delta := data[i] - data[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(data); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATR computes the Average True Range as a rolling mean of the true range.
func ATR(high, low, clos []float64, period int) []float64 {
	n := len(clos)
	tr := nanSlice(n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hpc := math.Abs(high[i] - clos[i-1])
		lpc := math.Abs(low[i] - clos[i-1])
		tr[i] = math.Max(hl, math.Max(hpc, lpc))
	}
	return SMA(tr, period)
}

// ROC computes the rate of change over the period, in percent.
func ROC(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	for i := period; i < len(data); i++ {
		prev := data[i-period]
		if prev == 0 {
			continue
		}
		out[i] = (data[i] - prev) / prev * 100
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
