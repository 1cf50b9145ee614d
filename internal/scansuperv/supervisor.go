package scansuperv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/jobq"
	"github.com/hashmap-kz/quantd/internal/metrics"
	"github.com/hashmap-kz/quantd/internal/snapshot"
)

type Supervisor struct {
	l       *slog.Logger
	cfg     *config.Config
	scanner *Scanner
	store   *snapshot.Store
	queue   *jobq.JobQueue
}

type SupervisorOpts struct {
	Scanner *Scanner
	Store   *snapshot.Store
	Queue   *jobq.JobQueue
}

func NewSupervisor(cfg *config.Config, opts *SupervisorOpts) *Supervisor {
	return &Supervisor{
		l:       slog.With(slog.String("component", "scan-supervisor")),
		cfg:     cfg,
		scanner: opts.Scanner,
		store:   opts.Store,
		queue:   opts.Queue,
	}
}

func (u *Supervisor) log() *slog.Logger {
	if u.l != nil {
		return u.l
	}
	return slog.With(slog.String("component", "scan-supervisor"))
}

// Run schedules scans with the configured cron expression and blocks until
// the context is canceled.
func (u *Supervisor) Run(ctx context.Context) error {
	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	_, err := c.AddFunc(u.cfg.Scan.Cron, func() {
		u.log().Info("starting scheduled scan")
		if _, err := u.scanner.Scan(ctx); err != nil {
			u.log().Error("scan failed", slog.Any("err", err))
			return
		}
		u.log().Info("scan completed")

		if u.cfg.Scan.Retention.Enable {
			u.submitRetention(ctx)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule scan %q: %w", u.cfg.Scan.Cron, err)
	}

	c.Start()
	<-ctx.Done()
	u.log().Info("context is done, exiting...")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// submitRetention runs retention on the job queue when one is wired, so a
// slow storage backend does not delay the next scheduled scan.
func (u *Supervisor) submitRetention(ctx context.Context) {
	run := func(ctx context.Context) {
		keep := u.cfg.Scan.Retention.KeepLast
		before, err := u.store.List(ctx)
		if err != nil {
			u.log().Error("retention list failed", slog.Any("err", err))
			return
		}
		if err := u.store.Retain(ctx, keep); err != nil {
			u.log().Error("retention failed", slog.Any("err", err))
			return
		}
		if deleted := len(before) - keep; deleted > 0 {
			metrics.SnapshotsDeleted.Add(float64(deleted))
		}
	}

	if u.queue == nil {
		run(ctx)
		return
	}
	if err := u.queue.Submit("snapshot-retention", run); err != nil {
		u.log().Warn("retention not scheduled", slog.Any("err", err))
	}
}
