package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/quantd/internal/quant/series"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	sum := w.Sentiment + w.Catalyst + w.Insider + w.Options + w.Technical
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestComposite(t *testing.T) {
	a := Analysis{
		SentimentScore: 10,
		CatalystScore:  10,
		InsiderScore:   10,
		OptionsScore:   10,
		TechnicalScore: 10,
	}
	assert.InDelta(t, 10.0, Composite(&a, DefaultWeights()), 1e-9)

	a = Analysis{
		SentimentScore: 8,   // 2.4
		CatalystScore:  6,   // 1.5
		InsiderScore:   5,   // 0.75
		OptionsScore:   5,   // 0.75
		TechnicalScore: 7.5, // 1.125
	}
	assert.InDelta(t, 6.53, Composite(&a, DefaultWeights()), 1e-9)
}

func TestRankOrderingAndRanks(t *testing.T) {
	analyses := []Analysis{
		{Ticker: "LOW", SentimentScore: 2, CatalystScore: 2, InsiderScore: 2, OptionsScore: 2, TechnicalScore: 2},
		{Ticker: "HIGH", SentimentScore: 9, CatalystScore: 9, InsiderScore: 9, OptionsScore: 9, TechnicalScore: 9},
		{Ticker: "MID", SentimentScore: 5, CatalystScore: 5, InsiderScore: 5, OptionsScore: 5, TechnicalScore: 5},
	}
	ranked := Rank(analyses, DefaultWeights())
	require.Len(t, ranked, 3)
	assert.Equal(t, "HIGH", ranked[0].Ticker)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "MID", ranked[1].Ticker)
	assert.Equal(t, "LOW", ranked[2].Ticker)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestTopPicks(t *testing.T) {
	ranked := Rank([]Analysis{{Ticker: "A"}, {Ticker: "B"}, {Ticker: "C"}}, DefaultWeights())
	assert.Len(t, TopPicks(ranked, 2), 2)
	assert.Len(t, TopPicks(ranked, 10), 3)
}

func TestCatalystScoreTiers(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	day := func(d int) string {
		return now.AddDate(0, 0, d).Format("2006-01-02")
	}

	assert.Equal(t, 9.5, CatalystScore(day(3), now))
	assert.Equal(t, 8.0, CatalystScore(day(10), now))
	assert.Equal(t, 7.0, CatalystScore(day(20), now))
	assert.Equal(t, 5.5, CatalystScore(day(28), now))
	assert.Equal(t, 4.0, CatalystScore(day(60), now))
	assert.Equal(t, 3.0, CatalystScore(day(-5), now))
	assert.Equal(t, 5.0, CatalystScore("", now))
	assert.Equal(t, 5.0, CatalystScore("garbage", now))
}

func TestOptionsScore(t *testing.T) {
	assert.Equal(t, 5.0, OptionsScore(0, 0))
	// call ratio 0.3 is the floor, 0.8 the ceiling
	assert.Equal(t, 0.0, OptionsScore(3, 7))
	assert.Equal(t, 10.0, OptionsScore(8, 2))
	assert.Equal(t, 10.0, OptionsScore(10, 0))
	// 50/50 maps to 4.0
	assert.Equal(t, 4.0, OptionsScore(5, 5))
}

func TestSentimentScore(t *testing.T) {
	assert.Equal(t, 5.0, SentimentScore(0))
	assert.Equal(t, 10.0, SentimentScore(1))
	assert.Equal(t, 0.0, SentimentScore(-1))
	assert.Equal(t, 6.0, SentimentScore(0.2))
}

func TestInsiderScore(t *testing.T) {
	assert.Equal(t, 8.0, InsiderScore(InsiderBuying))
	assert.Equal(t, 2.0, InsiderScore(InsiderSelling))
	assert.Equal(t, 5.0, InsiderScore(InsiderNeutral))
	assert.Equal(t, 5.0, InsiderScore("whatever"))
}

func TestTechnicalFromSeriesNeutralOnShortHistory(t *testing.T) {
	tech := TechnicalFromSeries(nil)
	assert.Equal(t, 5.0, tech.Score)
	assert.Equal(t, "Neutral", tech.Signal)

	short := testSeries(10, func(i int) float64 { return 100 })
	tech = TechnicalFromSeries(short)
	assert.Equal(t, 5.0, tech.Score)
}

func TestTechnicalFromSeriesUptrend(t *testing.T) {
	// steady riser: above SMA50, golden cross, near 52w high, RSI pinned
	// high (overbought)
	s := testSeries(260, func(i int) float64 { return 100 + float64(i) })
	tech := TechnicalFromSeries(s)

	assert.True(t, tech.AboveSMA50)
	assert.True(t, tech.GoldenCross)
	// 5 + 1.5 + 1.5 - 1.0 (rsi > 70) + 1.0 (near high) = 8.0
	assert.Equal(t, 8.0, tech.Score)
	assert.Equal(t, "Bullish", tech.Signal)
}

func TestTechnicalFromSeriesFlat(t *testing.T) {
	s := testSeries(260, func(i int) float64 { return 100 })
	tech := TechnicalFromSeries(s)

	assert.False(t, tech.AboveSMA50)
	assert.False(t, tech.GoldenCross)
	// 5 + 1.0 (rsi 50 in 40..70) + 1.0 (at the 52w high) = 7.0
	assert.Equal(t, 7.0, tech.Score)
}

func TestFormatMarketCap(t *testing.T) {
	assert.Equal(t, "$2.5T", FormatMarketCap(2.5e12))
	assert.Equal(t, "$10.0B", FormatMarketCap(1e10))
	assert.Equal(t, "$345.2M", FormatMarketCap(3.452e8))
	assert.Equal(t, "N/A", FormatMarketCap(0))
}

func testSeries(n int, f func(i int) float64) *series.Series {
	bars := make([]series.Bar, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		v := f(i)
		bars[i] = series.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   v,
			High:   v,
			Low:    v,
			Close:  v,
			Volume: 1000,
		}
	}
	return series.New("TEST", bars)
}
