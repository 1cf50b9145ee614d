// Package dashpipe wires the daemon's moving parts (bootstrap loader,
// script watcher, scheduled scans, job queue) into one controllable
// service.
package dashpipe

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/grafana/dskit/services"

	"github.com/hashmap-kz/quantd/config"
	"github.com/hashmap-kz/quantd/internal/boot"
	"github.com/hashmap-kz/quantd/internal/jobq"
	"github.com/hashmap-kz/quantd/internal/scansuperv"
)

type pipelineCmd int

const (
	pipelineCmdStart pipelineCmd = iota + 1
	pipelineCmdStop
)

// DashPipelineService controls:
//   - the bootstrap loader (initial load + fsnotify reloads)
//   - the cron scan supervisor
//   - the background job queue
//
// They share a child context. Pause cancels all of them, Resume starts
// them again (the loader re-runs the script on resume).
type DashPipelineService struct {
	*services.BasicService
	log      *slog.Logger
	cfg      *config.Config
	loader   *boot.Loader
	superv   *scansuperv.Supervisor
	jobQueue *jobq.JobQueue
	ctrlCh   chan pipelineCmd
	mu       sync.Mutex
	running  bool
}

func NewDashPipelineService(
	cfg *config.Config,
	loader *boot.Loader,
	superv *scansuperv.Supervisor,
	jobQueue *jobq.JobQueue,
) *DashPipelineService {
	s := &DashPipelineService{
		log:      slog.With("component", "dash-pipeline"),
		cfg:      cfg,
		loader:   loader,
		superv:   superv,
		jobQueue: jobQueue,
		ctrlCh:   make(chan pipelineCmd),
	}

	s.BasicService = services.NewBasicService(nil, s.run, nil).
		WithName("dash-pipeline")

	return s
}

func (s *DashPipelineService) run(ctx context.Context) error {
	s.log.Info("dashboard pipeline control loop started")

	var pipeCancel context.CancelFunc

	stopPipeline := func() {
		if pipeCancel != nil {
			pipeCancel()
			pipeCancel = nil
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}
	defer stopPipeline()

	startPipeline := func() {
		if pipeCancel != nil {
			// Already running
			return
		}
		s.log.Info("starting loader + scan pipeline")

		var pipeCtx context.Context
		pipeCtx, pipeCancel = context.WithCancel(ctx)

		s.mu.Lock()
		s.running = true
		s.mu.Unlock()

		if s.jobQueue != nil {
			s.jobQueue.Start(pipeCtx)
		}

		// 1) bootstrap loader: load once, failures stay on the error surface
		s.loader.Load()

		// 2) script watcher goroutine
		if s.cfg.Loader.Watch {
			go func() {
				w := boot.NewWatcher(s.loader)
				if err := w.Run(pipeCtx); err != nil && !errors.Is(err, context.Canceled) {
					s.log.Error("script watcher failed", slog.Any("err", err))
				} else {
					s.log.Info("script watcher stopped")
				}
			}()
		}

		// 3) scan supervisor goroutine
		if s.superv != nil {
			go func() {
				if err := s.superv.Run(pipeCtx); err != nil && !errors.Is(err, context.Canceled) {
					s.log.Error("scan supervisor failed", slog.Any("err", err))
				} else {
					s.log.Info("scan supervisor stopped")
				}
			}()
		}
	}

	startPipeline()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("dashboard pipeline context canceled, stopping pipeline")
			return nil

		case cmd := <-s.ctrlCh:
			switch cmd {
			case pipelineCmdStart:
				startPipeline()
			case pipelineCmdStop:
				s.log.Info("stopping loader + scan pipeline")
				stopPipeline()
			}
		}
	}
}

// Public API used by HTTP / CLI:

func (s *DashPipelineService) Pause() {
	select {
	case s.ctrlCh <- pipelineCmdStop:
	default:
		s.log.Warn("Pause: ctrlCh full, dropping request")
	}
}

func (s *DashPipelineService) Resume() {
	select {
	case s.ctrlCh <- pipelineCmdStart:
	default:
		s.log.Warn("Resume: ctrlCh full, dropping request")
	}
}

func (s *DashPipelineService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
