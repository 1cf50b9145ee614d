package httpsrv

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/boot"
	"github.com/hashmap-kz/quantd/internal/dataeng"
	"github.com/hashmap-kz/quantd/internal/paper"
	"github.com/hashmap-kz/quantd/internal/quant/backtest"
	"github.com/hashmap-kz/quantd/internal/quant/strategy"
	"github.com/hashmap-kz/quantd/internal/quant/universe"
	"github.com/hashmap-kz/quantd/internal/scansuperv"
	"github.com/hashmap-kz/quantd/internal/snapshot"
)

var ErrNoSnapshot = errors.New("no scan snapshot available yet")

// PipelineControl pauses and resumes the loader + scan pipeline.
type PipelineControl interface {
	Pause()
	Resume()
	IsRunning() bool
}

// DashboardService backs the HTTP controller with the daemon's components.
type DashboardService struct {
	cfg      *config.Config
	loader   *boot.Loader
	scanner  *scansuperv.Scanner
	store    *snapshot.Store
	registry *strategy.Registry
	client   *dataeng.Client
	trading  *paper.Engine // nil when paper trading is disabled
	pipeline PipelineControl
}

type DashboardServiceOpts struct {
	Loader   *boot.Loader
	Scanner  *scansuperv.Scanner
	Store    *snapshot.Store
	Registry *strategy.Registry
	Client   *dataeng.Client
	Trading  *paper.Engine
	Pipeline PipelineControl
}

func NewDashboardService(cfg *config.Config, opts *DashboardServiceOpts) *DashboardService {
	return &DashboardService{
		cfg:      cfg,
		loader:   opts.Loader,
		scanner:  opts.Scanner,
		store:    opts.Store,
		registry: opts.Registry,
		client:   opts.Client,
		trading:  opts.Trading,
		pipeline: opts.Pipeline,
	}
}

func (s *DashboardService) LoaderStatus() boot.Result {
	return s.loader.Status()
}

// DashboardBody returns the loaded script's panel output, when the script
// installed a Render hook.
func (s *DashboardService) DashboardBody() (string, bool) {
	return s.loader.Render()
}

func (s *DashboardService) Strategies() []strategy.Info {
	return s.registry.List()
}

func (s *DashboardService) Sectors() []string {
	return universe.Sectors()
}

type BacktestRequest struct {
	Ticker         string             `json:"ticker"`
	Strategy       string             `json:"strategy"`
	Params         map[string]float64 `json:"params,omitempty"`
	InitialCapital float64            `json:"initial_capital,omitempty"`
}

func (s *DashboardService) Backtest(ctx context.Context, req *BacktestRequest) (*backtest.Result, error) {
	if req.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	strat, err := s.registry.Create(req.Strategy, req.Params)
	if err != nil {
		return nil, err
	}
	srs, err := s.client.Candles(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}
	capital := req.InitialCapital
	if capital <= 0 {
		capital = backtest.DefaultInitialCapital
	}
	return backtest.Run(srs, strat, capital)
}

func (s *DashboardService) Rankings(ctx context.Context) (*snapshot.Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoSnapshot
	}
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

func (s *DashboardService) Scan(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.scanner.Scan(ctx)
}

func (s *DashboardService) Pipeline() (PipelineControl, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("pipeline control is not wired")
	}
	return s.pipeline, nil
}

func (s *DashboardService) Trading() (*paper.Engine, error) {
	if s.trading == nil {
		return nil, fmt.Errorf("paper trading is not configured")
	}
	return s.trading, nil
}
