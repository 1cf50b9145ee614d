// Package scoring implements the factor scoring model: every candidate gets
// five 0-10 factor scores (sentiment, catalyst, insider, options, technical)
// which are blended into a weighted composite used for ranking.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/hashmap-kz/quantd/internal/quant/indicators"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// Weights blends factor scores into the composite. Values must sum to 1.0.
type Weights struct {
	Sentiment float64 `json:"sentiment"`
	Catalyst  float64 `json:"catalyst"`
	Insider   float64 `json:"insider"`
	Options   float64 `json:"options"`
	Technical float64 `json:"technical"`
}

// DefaultWeights matches the strategy's published factor split.
func DefaultWeights() Weights {
	return Weights{
		Sentiment: 0.30,
		Catalyst:  0.25,
		Insider:   0.15,
		Options:   0.15,
		Technical: 0.15,
	}
}

// Analysis carries everything known about one ticker after a scan.
type Analysis struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	Price        float64 `json:"price"`
	MarketCap    float64 `json:"market_cap"`
	PERatio      float64 `json:"pe_ratio,omitempty"`
	EarningsDate string  `json:"earnings_date,omitempty"` // 2006-01-02

	SentimentScore float64 `json:"sentiment_score"`
	CatalystScore  float64 `json:"catalyst_score"`
	InsiderScore   float64 `json:"insider_score"`
	OptionsScore   float64 `json:"options_score"`
	TechnicalScore float64 `json:"technical_score"`
}

// Candidate is a ranked analysis row.
type Candidate struct {
	Rank      int     `json:"rank"`
	Composite float64 `json:"composite"`
	Analysis
}

// Composite computes the weighted composite score, rounded to 2 decimals.
func Composite(a *Analysis, w Weights) float64 {
	score := a.SentimentScore*w.Sentiment +
		a.CatalystScore*w.Catalyst +
		a.InsiderScore*w.Insider +
		a.OptionsScore*w.Options +
		a.TechnicalScore*w.Technical
	return round2(score)
}

// Rank scores all analyses and orders them by composite descending,
// assigning 1-based ranks.
func Rank(analyses []Analysis, w Weights) []Candidate {
	out := make([]Candidate, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, Candidate{Composite: Composite(&a, w), Analysis: a})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Composite > out[j].Composite })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// TopPicks returns the first n ranked candidates.
func TopPicks(ranked []Candidate, n int) []Candidate {
	if n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Technical holds the technical sub-scores for the detailed view.
type Technical struct {
	SMA50       float64 `json:"sma_50"`
	SMA200      float64 `json:"sma_200"`
	RSI         float64 `json:"rsi"`
	Price       float64 `json:"price"`
	Score       float64 `json:"score"`
	Signal      string  `json:"signal"`
	AboveSMA50  bool    `json:"above_sma50"`
	GoldenCross bool    `json:"golden_cross"`
}

// minTechnicalBars: below this a neutral technical read is returned.
const minTechnicalBars = 50

// TechnicalFromSeries rates price action 0-10: trend position, golden cross,
// RSI zone, proximity to the 52-week high and volume surges all contribute.
func TechnicalFromSeries(s *series.Series) Technical {
	if s == nil || s.Len() < minTechnicalBars {
		return Technical{RSI: 50, Score: 5, Signal: "Neutral"}
	}

	clos := s.Close()
	last := len(clos) - 1
	price := clos[last]

	sma50 := indicators.SMA(clos, 50)[last]
	hasLongTrend := s.Len() >= 200
	var sma200 float64
	if hasLongTrend {
		sma200 = indicators.SMA(clos, 200)[last]
	} else {
		sma200 = indicators.SMA(clos, s.Len())[last]
	}

	rsi := indicators.RSI(clos, 14)[last]
	if math.IsNaN(rsi) {
		rsi = 50
	}

	score := 5.0
	aboveSMA50 := price > sma50
	goldenCross := hasLongTrend && sma50 > sma200

	if aboveSMA50 {
		score += 1.5
	}
	if goldenCross {
		score += 1.5
	}
	switch {
	case rsi > 40 && rsi < 70: // healthy momentum zone
		score += 1.0
	case rsi < 30: // oversold bounce potential
		score += 0.5
	case rsi > 70: // overbought risk
		score -= 1.0
	}

	// Breakout: price near 52-week high
	tail := clos
	if len(clos) > 252 {
		tail = clos[len(clos)-252:]
	}
	high52w := series.Max(tail)
	if price > high52w*0.95 {
		score += 1.0
	}

	// Volume trend
	if s.Len() >= 20 {
		vol := s.Volume()
		avg20 := series.Mean(vol[len(vol)-20:])
		avg5 := series.Mean(vol[len(vol)-5:])
		if avg5 > avg20*1.5 {
			score += 0.5 // volume surge
		}
	}

	score = clamp(score, 0, 10)

	signal := "Neutral"
	if score >= 7 {
		signal = "Bullish"
	} else if score <= 3 {
		signal = "Bearish"
	}

	return Technical{
		SMA50:       round2(sma50),
		SMA200:      round2(sma200),
		RSI:         round1(rsi),
		Price:       round2(price),
		Score:       round1(score),
		Signal:      signal,
		AboveSMA50:  aboveSMA50,
		GoldenCross: goldenCross,
	}
}

// CatalystScore rates proximity to the next earnings date: the closer the
// event, the higher the score. Unknown dates are neutral, passed dates cool.
func CatalystScore(earningsDate string, now time.Time) float64 {
	if earningsDate == "" {
		return 5.0
	}
	ed, err := time.Parse("2006-01-02", earningsDate)
	if err != nil {
		return 5.0
	}
	daysUntil := int(ed.Sub(now).Hours() / 24)
	switch {
	case daysUntil < 0:
		return 3.0 // already passed
	case daysUntil <= 7:
		return 9.5 // imminent catalyst
	case daysUntil <= 14:
		return 8.0
	case daysUntil <= 21:
		return 7.0
	case daysUntil <= 30:
		return 5.5
	default:
		return 4.0
	}
}

// OptionsScore maps the call share of open interest (0.3..0.8) onto 0..10.
func OptionsScore(callsOI, putsOI float64) float64 {
	total := callsOI + putsOI
	if total <= 0 {
		return 5.0
	}
	callRatio := callsOI / total // higher = more bullish
	return round1(clamp((callRatio-0.3)/0.5*10, 0, 10))
}

// SentimentScore normalizes average headline polarity (-1..1) onto 0..10.
func SentimentScore(avgPolarity float64) float64 {
	return round1((avgPolarity + 1) / 2 * 10)
}

// Insider activity classifications.
const (
	InsiderBuying  = "Buying"
	InsiderSelling = "Selling"
	InsiderNeutral = "Neutral"
)

// InsiderScore rates net insider activity.
func InsiderScore(activity string) float64 {
	switch activity {
	case InsiderBuying:
		return 8.0
	case InsiderSelling:
		return 2.0
	default:
		return 5.0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
