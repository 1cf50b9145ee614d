package dataeng

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Quote holds fundamentals scraped from the public quote page.
type Quote struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	Industry     string  `json:"industry"`
	Price        float64 `json:"price"`
	MarketCap    float64 `json:"market_cap"`
	PERatio      float64 `json:"pe_ratio"`
	EarningsDate string  `json:"earnings_date"` // 2006-01-02, empty when unknown

	// InsiderTransPct is the net insider transactions percentage;
	// HasInsiderTrans is false when the page shows no value.
	InsiderTransPct float64 `json:"insider_trans_pct"`
	HasInsiderTrans bool    `json:"has_insider_trans"`
}

// QuotePage is one scraped quote page: fundamentals plus recent headlines.
type QuotePage struct {
	Quote     Quote    `json:"quote"`
	Headlines []string `json:"headlines"`
}

// maxHeadlines caps how many news-table rows are taken per ticker.
const maxHeadlines = 30

// QuotePage fetches and parses the quote page for a ticker.
func (c *Client) QuotePage(ctx context.Context, ticker string) (*QuotePage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/quote.ashx?t=%s&ty=c&p=d&b=1", c.quotePageURL, strings.ToUpper(ticker))
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch quote page %s: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch quote page %s: status %d", ticker, resp.StatusCode())
	}

	page, err := parseQuotePage(resp.String(), strings.ToUpper(ticker), time.Now())
	if err != nil {
		return nil, fmt.Errorf("parse quote page %s: %w", ticker, err)
	}
	return page, nil
}

func parseQuotePage(body, ticker string, now time.Time) (*QuotePage, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	page := &QuotePage{Quote: Quote{Ticker: ticker, Name: ticker}}

	// snapshot table: label/value td pairs
	if snapshot := findByClass(doc, "table", "snapshot-table2"); snapshot != nil {
		cells := collectText(snapshot, "td")
		for i := 0; i+1 < len(cells); i += 2 {
			applySnapshotField(&page.Quote, cells[i], cells[i+1], now)
		}
	}

	// news table: headline is the second cell of each row
	if news := findByID(doc, "news-table"); news != nil {
		for _, row := range findAll(news, "tr") {
			tds := findAll(row, "td")
			if len(tds) < 2 {
				continue
			}
			text := strings.TrimSpace(nodeText(tds[1]))
			if text == "" {
				continue
			}
			page.Headlines = append(page.Headlines, text)
			if len(page.Headlines) >= maxHeadlines {
				break
			}
		}
	}

	// sector/industry from the screener filter links
	for _, a := range findAll(doc, "a") {
		href := attr(a, "href")
		switch {
		case strings.Contains(href, "f=sec_") && page.Quote.Sector == "":
			page.Quote.Sector = strings.TrimSpace(nodeText(a))
		case strings.Contains(href, "f=ind_") && page.Quote.Industry == "":
			page.Quote.Industry = strings.TrimSpace(nodeText(a))
		}
	}

	// company name from the page title ("PLTR Palantir Technologies Inc Stock Quote")
	if title := findAll(doc, "title"); len(title) > 0 {
		t := strings.TrimSpace(nodeText(title[0]))
		t = strings.TrimSuffix(t, " Stock Quote")
		if name, ok := strings.CutPrefix(t, ticker+" "); ok && name != "" {
			page.Quote.Name = name
		}
	}

	return page, nil
}

func applySnapshotField(q *Quote, label, value string, now time.Time) {
	switch label {
	case "Market Cap":
		q.MarketCap = parseAbbrevNumber(value)
	case "P/E":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			q.PERatio = v
		}
	case "Price":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			q.Price = v
		}
	case "Insider Trans":
		if v, ok := parsePercent(value); ok {
			q.InsiderTransPct = v
			q.HasInsiderTrans = true
		}
	case "Earnings":
		q.EarningsDate = parseEarningsDate(value, now)
	}
}

// parseAbbrevNumber parses "10.5B" / "345.2M" / "1.2T" style numbers.
func parseAbbrevNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'T':
		mult = 1e12
		s = s[:len(s)-1]
	case 'B':
		mult = 1e9
		s = s[:len(s)-1]
	case 'M':
		mult = 1e6
		s = s[:len(s)-1]
	case 'K':
		mult = 1e3
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseEarningsDate converts "Feb 25 AMC" into an ISO date, inferring the
// year (the next occurrence of that month/day).
func parseEarningsDate(s string, now time.Time) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 {
		return ""
	}
	t, err := time.Parse("Jan 2", fields[0]+" "+fields[1])
	if err != nil {
		return ""
	}
	d := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// earnings shown on the page are upcoming or very recent; if the
	// date is more than ~6 months in the past, it refers to next year
	if d.Before(now.AddDate(0, -6, 0)) {
		d = d.AddDate(1, 0, 0)
	}
	return d.Format("2006-01-02")
}

// --- minimal html-tree helpers ---

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && strings.Contains(attr(n, "class"), class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func collectText(n *html.Node, tag string) []string {
	nodes := findAll(n, tag)
	out := make([]string, 0, len(nodes))
	for _, nd := range nodes {
		out = append(out, strings.TrimSpace(nodeText(nd)))
	}
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
