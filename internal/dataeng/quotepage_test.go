package dataeng

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuotePage = `<html>
<head><title>ACME Acme Corp Stock Quote</title></head>
<body>
<a href="/screener.ashx?v=111&f=sec_technology">Technology</a>
<a href="/screener.ashx?v=111&f=ind_software">Software</a>
<table class="snapshot-table2">
<tr><td>Market Cap</td><td>10.5B</td><td>P/E</td><td>24.3</td></tr>
<tr><td>Price</td><td>123.45</td><td>Insider Trans</td><td>-2.50%</td></tr>
<tr><td>Earnings</td><td>Feb 25 AMC</td><td>Volume</td><td>1,234,567</td></tr>
</table>
<table id="news-table">
<tr><td>Jan-10-26 08:00AM</td><td><a href="#">Acme beats estimates</a></td></tr>
<tr><td>Jan-09-26 04:30PM</td><td><a href="#">Acme announces buyback</a></td></tr>
</table>
</body></html>`

func TestParseQuotePage(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	page, err := parseQuotePage(sampleQuotePage, "ACME", now)
	require.NoError(t, err)

	q := page.Quote
	assert.Equal(t, "ACME", q.Ticker)
	assert.Equal(t, "Acme Corp", q.Name)
	assert.Equal(t, "Technology", q.Sector)
	assert.Equal(t, "Software", q.Industry)
	assert.Equal(t, 123.45, q.Price)
	assert.InDelta(t, 10.5e9, q.MarketCap, 1)
	assert.Equal(t, 24.3, q.PERatio)
	assert.Equal(t, "2026-02-25", q.EarningsDate)
	require.True(t, q.HasInsiderTrans)
	assert.Equal(t, -2.5, q.InsiderTransPct)

	require.Len(t, page.Headlines, 2)
	assert.Equal(t, "Acme beats estimates", page.Headlines[0])
}

func TestParseQuotePageMissingTables(t *testing.T) {
	page, err := parseQuotePage("<html><body></body></html>", "XYZ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "XYZ", page.Quote.Name)
	assert.False(t, page.Quote.HasInsiderTrans)
	assert.Empty(t, page.Headlines)
}

func TestParseAbbrevNumber(t *testing.T) {
	assert.InDelta(t, 1.2e12, parseAbbrevNumber("1.2T"), 1)
	assert.InDelta(t, 345.2e6, parseAbbrevNumber("345.2M"), 1)
	assert.Equal(t, 5e3, parseAbbrevNumber("5K"))
	assert.Equal(t, 42.0, parseAbbrevNumber("42"))
	assert.Equal(t, 0.0, parseAbbrevNumber("-"))
	assert.Equal(t, 0.0, parseAbbrevNumber(""))
}

func TestParsePercent(t *testing.T) {
	v, ok := parsePercent("-2.50%")
	require.True(t, ok)
	assert.Equal(t, -2.5, v)

	_, ok = parsePercent("-")
	assert.False(t, ok)
}

func TestParseEarningsDateYearRollover(t *testing.T) {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	// January earnings seen in December belong to next year
	assert.Equal(t, "2026-01-28", parseEarningsDate("Jan 28 BMO", now))
	assert.Equal(t, "", parseEarningsDate("-", now))
}
