package dataeng

import (
	"math"
	"strings"
)

// Headline sentiment: a small polarity lexicon over lowercased tokens.
// Polarity is the average word polarity, clamped to [-1, 1], mirroring the
// role the upstream NLP library played in the original pipeline.

var polarityLexicon = map[string]float64{
	// positive
	"beat": 0.7, "beats": 0.7, "surge": 0.8, "surges": 0.8, "soar": 0.9,
	"soars": 0.9, "jump": 0.6, "jumps": 0.6, "rally": 0.7, "rallies": 0.7,
	"gain": 0.5, "gains": 0.5, "record": 0.5, "strong": 0.6, "growth": 0.5,
	"upgrade": 0.8, "upgrades": 0.8, "upgraded": 0.8, "bullish": 0.8,
	"outperform": 0.7, "buy": 0.4, "wins": 0.6, "win": 0.6, "profit": 0.5,
	"profitable": 0.6, "breakthrough": 0.8, "approval": 0.7, "approved": 0.7,
	"partnership": 0.5, "expands": 0.4, "launch": 0.3, "launches": 0.3,
	"raises": 0.5, "raised": 0.5, "tops": 0.6, "best": 0.7, "boost": 0.6,
	"boosts": 0.6, "positive": 0.6, "higher": 0.4, "rise": 0.4, "rises": 0.4,

	// negative
	"miss": -0.7, "misses": -0.7, "missed": -0.7, "plunge": -0.9,
	"plunges": -0.9, "crash": -0.9, "crashes": -0.9, "fall": -0.5,
	"falls": -0.5, "drop": -0.5, "drops": -0.5, "sink": -0.7, "sinks": -0.7,
	"slump": -0.7, "slumps": -0.7, "weak": -0.6, "loss": -0.5, "losses": -0.5,
	"downgrade": -0.8, "downgrades": -0.8, "downgraded": -0.8, "bearish": -0.8,
	"underperform": -0.7, "sell": -0.4, "lawsuit": -0.6, "probe": -0.5,
	"investigation": -0.5, "recall": -0.6, "delay": -0.4, "delays": -0.4,
	"cuts": -0.5, "cut": -0.5, "warns": -0.6, "warning": -0.6, "worst": -0.8,
	"negative": -0.6, "lower": -0.4, "decline": -0.5, "declines": -0.5,
	"layoffs": -0.6, "bankruptcy": -0.9, "fraud": -0.9,
}

// Sentiment summarizes headline polarity for one ticker.
type Sentiment struct {
	AvgPolarity float64 `json:"avg_polarity"` // -1..1
	PositivePct float64 `json:"positive_pct"`
	Count       int     `json:"count"`
}

// positivePolarity is the threshold above which a headline counts as positive.
const positivePolarity = 0.05

// AnalyzeHeadlines scores each headline and aggregates.
func AnalyzeHeadlines(headlines []string) Sentiment {
	if len(headlines) == 0 {
		return Sentiment{}
	}
	sum := 0.0
	positive := 0
	for _, h := range headlines {
		p := HeadlinePolarity(h)
		sum += p
		if p > positivePolarity {
			positive++
		}
	}
	return Sentiment{
		AvgPolarity: round3(sum / float64(len(headlines))),
		PositivePct: round1f(float64(positive) / float64(len(headlines)) * 100),
		Count:       len(headlines),
	}
}

// HeadlinePolarity scores a single headline in [-1, 1].
func HeadlinePolarity(headline string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(headline), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	sum, n := 0.0, 0
	for _, tok := range tokens {
		if p, ok := polarityLexicon[tok]; ok {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	p := sum / float64(n)
	return math.Max(-1, math.Min(1, p))
}

func round3(v float64) float64  { return math.Round(v*1000) / 1000 }
func round1f(v float64) float64 { return math.Round(v*10) / 10 }
