package paper

import (
	"context"
	"sort"
	"sync"
)

// MemRepo is an in-memory Repository. It backs the daemon when no
// database is configured, and the tests.
type MemRepo struct {
	mu        sync.RWMutex
	accounts  map[string]Account
	positions map[string]map[string]Position // account -> ticker -> position
	orders    map[string][]Order
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		accounts:  make(map[string]Account),
		positions: make(map[string]map[string]Position),
		orders:    make(map[string][]Order),
	}
}

func (r *MemRepo) CreateAccount(_ context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Name]; ok {
		return ErrAccountExists
	}
	r.accounts[a.Name] = *a
	return nil
}

func (r *MemRepo) GetAccount(_ context.Context, name string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[name]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (r *MemRepo) UpdateCash(_ context.Context, name string, cash float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	if !ok {
		return ErrAccountNotFound
	}
	a.Cash = cash
	r.accounts[name] = a
	return nil
}

func (r *MemRepo) UpsertPosition(_ context.Context, account string, p Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.positions[account] == nil {
		r.positions[account] = make(map[string]Position)
	}
	r.positions[account][p.Ticker] = p
	return nil
}

func (r *MemRepo) DeletePosition(_ context.Context, account, ticker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.positions[account], ticker)
	return nil
}

func (r *MemRepo) Positions(_ context.Context, account string) ([]Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byTicker := r.positions[account]
	out := make([]Position, 0, len(byTicker))
	for _, p := range byTicker {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (r *MemRepo) InsertOrder(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.Account] = append(r.orders[o.Account], *o)
	return nil
}

func (r *MemRepo) Orders(_ context.Context, account string, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.orders[account]
	// newest first
	out := make([]Order, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *MemRepo) Reset(_ context.Context, account string, cash float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[account]
	if !ok {
		return ErrAccountNotFound
	}
	a.Cash = cash
	r.accounts[account] = a
	delete(r.positions, account)
	delete(r.orders, account)
	return nil
}
