package strategy

import (
	"fmt"
	"sort"
	"sync"
)

// Builtin strategy keys.
const (
	KeyBollingerBreakout  = "bollinger_breakout"
	KeyMeanReversion      = "mean_reversion"
	KeyRSIMomentum        = "rsi_momentum"
	KeyMACDCrossover      = "macd_crossover"
	KeyDualMA             = "dual_ma"
	KeyVolatilityBreakout = "volatility_breakout"
	KeyMomentum           = "momentum"
)

type Factory func() Strategy

// Info describes a registered strategy for dashboard display.
type Info struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Registry creates strategies by key. Loaded dashboard scripts may register
// additional strategies at runtime, so access is guarded.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[KeyBollingerBreakout] = func() Strategy { return NewBollingerBreakout() }
	r.factories[KeyMeanReversion] = func() Strategy { return NewMeanReversion() }
	r.factories[KeyRSIMomentum] = func() Strategy { return NewRSIMomentum() }
	r.factories[KeyMACDCrossover] = func() Strategy { return NewMACDCrossover() }
	r.factories[KeyDualMA] = func() Strategy { return NewDualMA() }
	r.factories[KeyVolatilityBreakout] = func() Strategy { return NewVolatilityBreakout() }
	r.factories[KeyMomentum] = func() Strategy { return NewMomentum() }
	return r
}

// Register adds a strategy factory under a unique key.
func (r *Registry) Register(key string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("strategy already registered: %s", key)
	}
	r.factories[key] = f
	return nil
}

// Create instantiates a strategy by key, applying optional parameters.
func (r *Registry) Create(key string, params map[string]float64) (Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s (available: %v)", key, r.Keys())
	}
	s := f()
	if len(params) > 0 {
		s.SetParams(params)
	}
	return s, nil
}

// Keys returns the registered strategy keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns metadata for every registered strategy.
func (r *Registry) List() []Info {
	keys := r.Keys()
	out := make([]Info, 0, len(keys))
	for _, k := range keys {
		s, err := r.Create(k, nil)
		if err != nil {
			continue
		}
		out = append(out, Info{Key: k, Name: s.Name(), Description: s.Description()})
	}
	return out
}

// Describe returns full metadata (including the parameter schema) for one key.
func (r *Registry) Describe(key string) (Info, error) {
	s, err := r.Create(key, nil)
	if err != nil {
		return Info{}, err
	}
	return Info{Key: key, Name: s.Name(), Description: s.Description(), Params: s.Params()}, nil
}
