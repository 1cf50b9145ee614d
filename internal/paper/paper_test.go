package paper

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuoter serves fixed prices per ticker.
type stubQuoter struct {
	prices map[string]float64
}

func (q *stubQuoter) LastPrice(_ context.Context, ticker string) (float64, error) {
	p, ok := q.prices[ticker]
	if !ok {
		return 0, fmt.Errorf("no price for %s", ticker)
	}
	return p, nil
}

func newTestEngine(prices map[string]float64) *Engine {
	return NewEngine(NewMemRepo(), &stubQuoter{prices: prices}, 100_000)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(nil)

	a, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, 100_000.0, a.Cash)

	_, err = e.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = e.Authenticate(ctx, "alice", "secret")
	assert.NoError(t, err)

	_, err = e.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = e.Authenticate(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(nil)

	_, err := e.Register(ctx, "  ", "secret")
	assert.Error(t, err)
	_, err = e.Register(ctx, "bob", "")
	assert.Error(t, err)
}

func TestBuyUpdatesCashAndPosition(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	o, err := e.Buy(ctx, "alice", "acme", 10)
	require.NoError(t, err)
	assert.Equal(t, "ACME", o.Ticker)
	assert.Equal(t, 500.0, o.Total)

	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 99_500.0, p.Cash)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 10.0, p.Holdings[0].Shares)
	assert.Equal(t, 50.0, p.Holdings[0].AvgPrice)
	assert.Equal(t, 100_000.0, p.TotalValue)
}

func TestBuyAveragesCost(t *testing.T) {
	ctx := context.Background()
	q := &stubQuoter{prices: map[string]float64{"ACME": 50}}
	e := NewEngine(NewMemRepo(), q, 100_000)
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Buy(ctx, "alice", "ACME", 10)
	require.NoError(t, err)

	q.prices["ACME"] = 100
	_, err = e.Buy(ctx, "alice", "ACME", 10)
	require.NoError(t, err)

	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 20.0, p.Holdings[0].Shares)
	assert.Equal(t, 75.0, p.Holdings[0].AvgPrice)
}

func TestBuyInsufficientCash(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 1000})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Buy(ctx, "alice", "ACME", 1000)
	assert.ErrorIs(t, err, ErrInsufficientCash)
}

func TestSellClosesPosition(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Buy(ctx, "alice", "ACME", 10)
	require.NoError(t, err)
	_, err = e.Sell(ctx, "alice", "ACME", 10)
	require.NoError(t, err)

	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, p.Holdings)
	assert.Equal(t, 100_000.0, p.Cash)
}

func TestSellInsufficientPosition(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Sell(ctx, "alice", "ACME", 1)
	assert.ErrorIs(t, err, ErrInsufficientPos)

	_, err = e.Buy(ctx, "alice", "ACME", 5)
	require.NoError(t, err)
	_, err = e.Sell(ctx, "alice", "ACME", 6)
	assert.ErrorIs(t, err, ErrInsufficientPos)
}

func TestOrderValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Buy(ctx, "alice", "ACME", 0)
	assert.Error(t, err)
	_, err = e.Buy(ctx, "alice", "", 1)
	assert.Error(t, err)
	_, err = e.Buy(ctx, "nobody", "ACME", 1)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = e.Buy(ctx, "alice", "UNKNOWN", 1)
	assert.Error(t, err)
}

func TestPortfolioGainAndQuoteFallback(t *testing.T) {
	ctx := context.Background()
	q := &stubQuoter{prices: map[string]float64{"ACME": 50}}
	e := NewEngine(NewMemRepo(), q, 100_000)
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = e.Buy(ctx, "alice", "ACME", 10)
	require.NoError(t, err)

	q.prices["ACME"] = 60
	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 600.0, p.Holdings[0].MarketValue)
	assert.Equal(t, 20.0, p.Holdings[0].GainPct)

	// quote source gone: positions are valued at cost
	delete(q.prices, "ACME")
	p, err = e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Holdings[0].Price)
	assert.Equal(t, 0.0, p.Holdings[0].GainPct)
}

func TestOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50, "BETA": 10})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = e.Buy(ctx, "alice", "ACME", 1)
	require.NoError(t, err)
	_, err = e.Buy(ctx, "alice", "BETA", 1)
	require.NoError(t, err)

	orders, err := e.Orders(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "BETA", orders[0].Ticker)

	orders, err = e.Orders(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(map[string]float64{"ACME": 50})
	_, err := e.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = e.Buy(ctx, "alice", "ACME", 10)
	require.NoError(t, err)

	require.NoError(t, e.Reset(ctx, "alice"))

	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100_000.0, p.Cash)
	assert.Empty(t, p.Holdings)

	orders, err := e.Orders(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, orders)

	assert.ErrorIs(t, e.Reset(ctx, "nobody"), ErrAccountNotFound)
}
