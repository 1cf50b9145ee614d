// Package paper implements the paper-trading engine: accounts with virtual
// cash, market orders filled at the latest close, and portfolio valuation.
package paper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrBadCredentials   = errors.New("bad credentials")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrInsufficientPos  = errors.New("insufficient position")
)

type Account struct {
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Cash         float64   `json:"cash"`
	CreatedAt    time.Time `json:"created_at"`
}

type Position struct {
	Ticker   string  `json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
}

type Order struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Ticker    string    `json:"ticker"`
	Side      string    `json:"side"`
	Shares    float64   `json:"shares"`
	Price     float64   `json:"price"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Holding is a position enriched with the current market price.
type Holding struct {
	Position
	Price       float64 `json:"price"`
	MarketValue float64 `json:"market_value"`
	GainPct     float64 `json:"gain_pct"`
}

type Portfolio struct {
	Account     string    `json:"account"`
	Cash        float64   `json:"cash"`
	Holdings    []Holding `json:"holdings"`
	MarketValue float64   `json:"market_value"`
	TotalValue  float64   `json:"total_value"`
}

// Repository persists accounts, positions and the order log.
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, name string) (*Account, error)
	UpdateCash(ctx context.Context, name string, cash float64) error

	UpsertPosition(ctx context.Context, account string, p Position) error
	DeletePosition(ctx context.Context, account, ticker string) error
	Positions(ctx context.Context, account string) ([]Position, error)

	InsertOrder(ctx context.Context, o *Order) error
	Orders(ctx context.Context, account string, limit int) ([]Order, error)

	// Reset drops positions and orders and restores the starting cash.
	Reset(ctx context.Context, account string, cash float64) error
}

// PriceQuoter supplies the fill price for market orders.
type PriceQuoter interface {
	LastPrice(ctx context.Context, ticker string) (float64, error)
}

type Engine struct {
	l           *slog.Logger
	repo        Repository
	quoter      PriceQuoter
	initialCash float64
}

func NewEngine(repo Repository, quoter PriceQuoter, initialCash float64) *Engine {
	return &Engine{
		l:           slog.With(slog.String("component", "paper-trading")),
		repo:        repo,
		quoter:      quoter,
		initialCash: initialCash,
	}
}

func (e *Engine) log() *slog.Logger {
	if e.l != nil {
		return e.l
	}
	return slog.With(slog.String("component", "paper-trading"))
}

// Register creates an account with the configured starting cash.
func (e *Engine) Register(ctx context.Context, name, password string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	a := &Account{
		Name:         name,
		PasswordHash: HashPassword(password),
		Cash:         e.initialCash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	e.log().Info("account created", slog.String("account", name))
	return a, nil
}

// Authenticate checks the account password.
func (e *Engine) Authenticate(ctx context.Context, name, password string) (*Account, error) {
	a, err := e.repo.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	if a.PasswordHash != HashPassword(password) {
		return nil, ErrBadCredentials
	}
	return a, nil
}

// Buy fills a market buy at the latest close.
func (e *Engine) Buy(ctx context.Context, account, ticker string, shares float64) (*Order, error) {
	return e.execute(ctx, account, ticker, SideBuy, shares)
}

// Sell fills a market sell at the latest close.
func (e *Engine) Sell(ctx context.Context, account, ticker string, shares float64) (*Order, error) {
	return e.execute(ctx, account, ticker, SideSell, shares)
}

func (e *Engine) execute(ctx context.Context, account, ticker, side string, shares float64) (*Order, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive, got %v", shares)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	a, err := e.repo.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	price, err := e.quoter.LastPrice(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", ticker, err)
	}
	if price <= 0 {
		return nil, fmt.Errorf("no quote for %s", ticker)
	}
	total := round2(price * shares)

	positions, err := e.repo.Positions(ctx, account)
	if err != nil {
		return nil, err
	}
	var pos *Position
	for i := range positions {
		if positions[i].Ticker == ticker {
			pos = &positions[i]
			break
		}
	}

	switch side {
	case SideBuy:
		if total > a.Cash {
			return nil, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, total, a.Cash)
		}
		next := Position{Ticker: ticker, Shares: shares, AvgPrice: price}
		if pos != nil {
			combined := pos.Shares + shares
			next.Shares = combined
			next.AvgPrice = round2((pos.AvgPrice*pos.Shares + price*shares) / combined)
		}
		if err := e.repo.UpsertPosition(ctx, account, next); err != nil {
			return nil, err
		}
		if err := e.repo.UpdateCash(ctx, account, round2(a.Cash-total)); err != nil {
			return nil, err
		}

	case SideSell:
		if pos == nil || pos.Shares < shares {
			held := 0.0
			if pos != nil {
				held = pos.Shares
			}
			return nil, fmt.Errorf("%w: selling %v of %s, holding %v", ErrInsufficientPos, shares, ticker, held)
		}
		remaining := pos.Shares - shares
		if remaining > 1e-9 {
			next := Position{Ticker: ticker, Shares: remaining, AvgPrice: pos.AvgPrice}
			if err := e.repo.UpsertPosition(ctx, account, next); err != nil {
				return nil, err
			}
		} else {
			if err := e.repo.DeletePosition(ctx, account, ticker); err != nil {
				return nil, err
			}
		}
		if err := e.repo.UpdateCash(ctx, account, round2(a.Cash+total)); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown order side: %s", side)
	}

	o := &Order{
		ID:        uuid.NewString(),
		Account:   account,
		Ticker:    ticker,
		Side:      side,
		Shares:    shares,
		Price:     price,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.repo.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	e.log().Info("order filled",
		slog.String("account", account),
		slog.String("ticker", ticker),
		slog.String("side", side),
		slog.Float64("shares", shares),
		slog.Float64("price", price),
	)
	return o, nil
}

// Portfolio values the account at current prices. Tickers without a quote
// fall back to the position's average price.
func (e *Engine) Portfolio(ctx context.Context, account string) (*Portfolio, error) {
	a, err := e.repo.GetAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	positions, err := e.repo.Positions(ctx, account)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{Account: account, Cash: a.Cash, Holdings: make([]Holding, 0, len(positions))}
	for _, pos := range positions {
		price, qErr := e.quoter.LastPrice(ctx, pos.Ticker)
		if qErr != nil || price <= 0 {
			if qErr != nil {
				e.log().Warn("no quote, valuing at cost",
					slog.String("ticker", pos.Ticker), slog.Any("err", qErr))
			}
			price = pos.AvgPrice
		}
		h := Holding{
			Position:    pos,
			Price:       price,
			MarketValue: round2(price * pos.Shares),
		}
		if pos.AvgPrice > 0 {
			h.GainPct = round2((price/pos.AvgPrice - 1) * 100)
		}
		p.MarketValue = round2(p.MarketValue + h.MarketValue)
		p.Holdings = append(p.Holdings, h)
	}
	p.TotalValue = round2(p.Cash + p.MarketValue)
	return p, nil
}

// Orders returns the most recent orders for an account.
func (e *Engine) Orders(ctx context.Context, account string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := e.repo.GetAccount(ctx, account); err != nil {
		return nil, err
	}
	return e.repo.Orders(ctx, account, limit)
}

// Reset wipes positions and order history and restores the starting cash.
func (e *Engine) Reset(ctx context.Context, account string) error {
	if _, err := e.repo.GetAccount(ctx, account); err != nil {
		return err
	}
	if err := e.repo.Reset(ctx, account, e.initialCash); err != nil {
		return err
	}
	e.log().Info("account reset", slog.String("account", account))
	return nil
}

// HashPassword is a hex sha-256 digest. Paper accounts hold no real funds.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
