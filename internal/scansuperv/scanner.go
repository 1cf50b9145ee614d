// Package scansuperv runs universe scans: on demand, and on a cron
// schedule with snapshot upload and retention.
package scansuperv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/dataeng"
	"github.com/hashmap-kz/quantd/internal/logger"
	"github.com/hashmap-kz/quantd/internal/metrics"
	"github.com/hashmap-kz/quantd/internal/quant/scoring"
	"github.com/hashmap-kz/quantd/internal/quant/universe"
	"github.com/hashmap-kz/quantd/internal/snapshot"
)

type Scanner struct {
	l      *slog.Logger
	cfg    *config.Config
	client *dataeng.Client
	store  *snapshot.Store // optional; nil skips persistence
}

type ScannerOpts struct {
	Client *dataeng.Client
	Store  *snapshot.Store
}

func NewScanner(cfg *config.Config, opts *ScannerOpts) *Scanner {
	return &Scanner{
		l:      slog.With(slog.String("component", "scanner")),
		cfg:    cfg,
		client: opts.Client,
		store:  opts.Store,
	}
}

func (s *Scanner) log() *slog.Logger {
	if s.l != nil {
		return s.l
	}
	return slog.With(slog.String("component", "scanner"))
}

func (s *Scanner) weights() scoring.Weights {
	w := s.cfg.Scan.Weights
	return scoring.Weights{
		Sentiment: w.Sentiment,
		Catalyst:  w.Catalyst,
		Insider:   w.Insider,
		Options:   w.Options,
		Technical: w.Technical,
	}
}

// Scan analyzes the configured sector, ranks the candidates and persists a
// snapshot when a store is wired. Per-ticker failures are skipped, a scan
// with zero analyzable tickers is an error.
func (s *Scanner) Scan(ctx context.Context) (*snapshot.Snapshot, error) {
	sector := s.cfg.Scan.Sector
	tickers, err := universe.Sector(sector)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	s.log().Info("scan started",
		slog.String("sector", sector),
		slog.Int("tickers", len(tickers)),
	)

	analyses := make([]scoring.Analysis, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := s.client.AnalyzeTicker(ctx, ticker)
		if err != nil {
			metrics.TickersFailed.Inc()
			s.log().Warn("ticker skipped", slog.String("ticker", ticker), slog.Any("err", err))
			continue
		}
		metrics.TickersAnalyzed.Inc()
		logger.DebugLazy(ctx, "ticker analyzed", func() []slog.Attr {
			return []slog.Attr{
				slog.String("ticker", ticker),
				slog.Float64("sentiment", report.Analysis.SentimentScore),
				slog.Float64("catalyst", report.Analysis.CatalystScore),
				slog.Float64("technical", report.Analysis.TechnicalScore),
			}
		})
		analyses = append(analyses, report.Analysis)
	}
	if len(analyses) == 0 {
		metrics.ScanFailures.Inc()
		return nil, fmt.Errorf("scan produced no analyzable tickers (sector %q)", sector)
	}

	w := s.weights()
	ranked := scoring.Rank(analyses, w)
	snap := &snapshot.Snapshot{
		CreatedAt:  time.Now().UTC(),
		Sector:     sector,
		Weights:    w,
		Candidates: ranked,
		TopPicks:   scoring.TopPicks(ranked, s.cfg.Scan.TopN),
	}

	if s.store != nil {
		name, err := s.store.Save(ctx, snap)
		if err != nil {
			return nil, err
		}
		metrics.SnapshotsSaved.WithLabelValues(s.cfg.Storage.Name).Inc()
		s.log().Info("snapshot persisted", slog.String("name", name))
	}

	metrics.ScansTotal.Inc()
	metrics.ScanDuration.Observe(time.Since(started).Seconds())
	s.log().Info("scan finished",
		slog.Int("candidates", len(ranked)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return snap, nil
}
