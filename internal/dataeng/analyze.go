package dataeng

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashmap-kz/quantd/internal/quant/scoring"
	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// TickerReport is the full analysis of one ticker: the scoring row plus the
// raw sub-data for detailed dashboard views.
type TickerReport struct {
	Analysis  scoring.Analysis  `json:"analysis"`
	Sentiment Sentiment         `json:"sentiment"`
	Technical scoring.Technical `json:"technical"`
	Headlines []string          `json:"headlines,omitempty"`
}

// AnalyzeTicker runs the full per-ticker pipeline: quote page, candles,
// headline sentiment and the factor scores. Missing sources degrade to
// neutral scores instead of failing the whole scan.
func (c *Client) AnalyzeTicker(ctx context.Context, ticker string) (*TickerReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quote := Quote{Ticker: ticker, Name: ticker}
	var headlines []string
	page, err := c.QuotePage(ctx, ticker)
	if err != nil {
		c.log().Warn("quote page unavailable, using neutral fundamentals",
			slog.String("ticker", ticker), slog.Any("err", err))
	} else {
		quote = page.Quote
		headlines = page.Headlines
	}

	var srs *series.Series
	srs, err = c.Candles(ctx, ticker)
	if err != nil {
		c.log().Warn("candles unavailable, technical score is neutral",
			slog.String("ticker", ticker), slog.Any("err", err))
		srs = nil
	}

	sentiment := AnalyzeHeadlines(headlines)
	technical := scoring.TechnicalFromSeries(srs)

	price := quote.Price
	if price == 0 && srs != nil {
		if last, lastErr := srs.LastClose(); lastErr == nil {
			price = last
		}
	}

	var callsOI, putsOI float64
	if c.options != nil {
		if co, po, oiErr := c.options.OpenInterest(ticker); oiErr == nil {
			callsOI, putsOI = co, po
		}
	}

	report := &TickerReport{
		Analysis: scoring.Analysis{
			Ticker:       quote.Ticker,
			Name:         quote.Name,
			Sector:       quote.Sector,
			Price:        price,
			MarketCap:    quote.MarketCap,
			PERatio:      quote.PERatio,
			EarningsDate: quote.EarningsDate,

			SentimentScore: scoring.SentimentScore(sentiment.AvgPolarity),
			CatalystScore:  scoring.CatalystScore(quote.EarningsDate, time.Now()),
			InsiderScore:   scoring.InsiderScore(insiderActivity(quote)),
			OptionsScore:   scoring.OptionsScore(callsOI, putsOI),
			TechnicalScore: technical.Score,
		},
		Sentiment: sentiment,
		Technical: technical,
		Headlines: headlines,
	}
	return report, nil
}

// insiderActivity classifies the net insider transaction percentage.
func insiderActivity(q Quote) string {
	if !q.HasInsiderTrans {
		return scoring.InsiderNeutral
	}
	switch {
	case q.InsiderTransPct > 0:
		return scoring.InsiderBuying
	case q.InsiderTransPct < 0:
		return scoring.InsiderSelling
	default:
		return scoring.InsiderNeutral
	}
}
