package dataeng

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hashmap-kz/quantd/internal/quant/series"
)

// Candles fetches daily OHLCV history for a US ticker (CSV endpoint,
// stooq format: Date,Open,High,Low,Close,Volume).
func (c *Client) Candles(ctx context.Context, ticker string) (*series.Series, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/q/d/l/?s=%s.us&i=d", c.candlesURL, strings.ToLower(ticker))
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch candles %s: status %d", ticker, resp.StatusCode())
	}

	bars, err := parseCandlesCSV(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse candles %s: %w", ticker, err)
	}
	return series.New(strings.ToUpper(ticker), bars), nil
}

// LastPrice returns the latest daily close, used as the fill price for
// paper orders.
func (c *Client) LastPrice(ctx context.Context, ticker string) (float64, error) {
	srs, err := c.Candles(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return srs.LastClose()
}

func parseCandlesCSV(r io.Reader) ([]series.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []series.Bar
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			// header row
			first = false
			if len(rec) > 0 && strings.EqualFold(rec[0], "date") {
				continue
			}
		}
		if len(rec) < 6 {
			continue
		}
		t, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		clos, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		vol, _ := strconv.ParseFloat(rec[5], 64)
		bars = append(bars, series.Bar{Time: t, Open: open, High: high, Low: low, Close: clos, Volume: vol})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable rows")
	}
	return bars, nil
}
