// Package dataeng fetches market data (daily candles, quote fundamentals,
// news headlines, insider activity) from free public sources and assembles
// per-ticker factor analyses for the scoring model.
package dataeng

import (
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/hashmap-kz/quantd/config"
)

// browserUA avoids bot rejections on the public quote pages.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultCandlesURL = "https://stooq.com"
const defaultQuotePageURL = "https://finviz.com"

// OptionsProvider supplies call/put open interest for the options factor.
// Scans run without one; the factor then stays neutral.
type OptionsProvider interface {
	OpenInterest(ticker string) (callsOI, putsOI float64, err error)
}

type Client struct {
	l       *slog.Logger
	resty   *resty.Client
	limiter *rate.Limiter

	candlesURL   string
	quotePageURL string

	// optional
	options OptionsProvider
}

type ClientOpts struct {
	// CandlesURL overrides the OHLCV source base URL.
	CandlesURL string
	// QuotePageURL overrides the fundamentals/news page base URL.
	QuotePageURL string
	Options      OptionsProvider
}

func NewClient(cfg *config.DataConfig, opts *ClientOpts) *Client {
	if opts == nil {
		opts = &ClientOpts{}
	}

	rc := resty.New()
	rc.SetRetryCount(0)
	rc.SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second)
	rc.SetHeader("User-Agent", browserUA)

	candlesURL := cfg.BaseURL
	if opts.CandlesURL != "" {
		candlesURL = opts.CandlesURL
	}
	if candlesURL == "" {
		candlesURL = defaultCandlesURL
	}
	quotePageURL := opts.QuotePageURL
	if quotePageURL == "" {
		quotePageURL = defaultQuotePageURL
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		l:            slog.With(slog.String("component", "data-engine")),
		resty:        rc,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		candlesURL:   candlesURL,
		quotePageURL: quotePageURL,
		options:      opts.Options,
	}
}

func (c *Client) log() *slog.Logger {
	if c.l != nil {
		return c.l
	}
	return slog.With(slog.String("component", "data-engine"))
}
