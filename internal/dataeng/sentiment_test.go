package dataeng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadlinePolarity(t *testing.T) {
	assert.InDelta(t, 0.7, HeadlinePolarity("Acme beats earnings estimates"), 1e-9)
	// "plunge" (-0.9) and "recall" (-0.6) average to -0.75
	assert.InDelta(t, -0.75, HeadlinePolarity("Shares plunge after recall!"), 1e-9)
	assert.Equal(t, 0.0, HeadlinePolarity("Quarterly report scheduled"))
	assert.Equal(t, 0.0, HeadlinePolarity(""))
}

func TestHeadlinePolarityAverages(t *testing.T) {
	// "surges" (0.8) and "misses" (-0.7) average to 0.05
	assert.InDelta(t, 0.05, HeadlinePolarity("Stock surges then misses"), 1e-9)
}

func TestHeadlinePolarityCaseAndPunctuation(t *testing.T) {
	assert.InDelta(t, 0.8, HeadlinePolarity("BULLISH: analysts upgrade... wait, no"), 1e-9)
	assert.InDelta(t, 0.8, HeadlinePolarity("Upgraded!"), 1e-9)
}

func TestAnalyzeHeadlines(t *testing.T) {
	// polarities: 0.7, avg(-0.5, -0.6) = -0.55, 0
	s := AnalyzeHeadlines([]string{
		"Acme beats estimates",
		"Shares fall on warning",
		"Board meeting scheduled",
	})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 33.3, s.PositivePct, 0.05)
	// (0.7 - 0.55 + 0) / 3
	assert.InDelta(t, 0.05, s.AvgPolarity, 1e-9)
}

func TestAnalyzeHeadlinesEmpty(t *testing.T) {
	s := AnalyzeHeadlines(nil)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.AvgPolarity)
}
