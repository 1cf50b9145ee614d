// Package jobq is a small buffered queue for background maintenance jobs
// (snapshot uploads, retention). Submission never blocks the caller.
package jobq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

var ErrJobQueueFull = errors.New("job queue full")

type NamedJob struct {
	Name string
	Run  func(ctx context.Context)
}

type JobQueue struct {
	l    *slog.Logger
	jobs chan NamedJob
}

func NewJobQueue(bufferSize int) *JobQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &JobQueue{
		l:    slog.With("component", "job-queue"),
		jobs: make(chan NamedJob, bufferSize),
	}
}

func (q *JobQueue) log() *slog.Logger {
	if q.l != nil {
		return q.l
	}
	return slog.With("component", "job-queue")
}

func (q *JobQueue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-q.jobs:
				q.log().Info("run job", slog.String("job-name", job.Name))
				q.runSafe(ctx, job)
				q.log().Info("fin job", slog.String("job-name", job.Name))
			}
		}
	}()
}

// runSafe keeps a panicking job from taking the worker down with it.
func (q *JobQueue) runSafe(ctx context.Context, job NamedJob) {
	defer func() {
		if r := recover(); r != nil {
			q.log().Error("job panic",
				slog.String("job-name", job.Name),
				slog.Any("err", r),
				slog.String("trace", string(debug.Stack())),
			)
		}
	}()
	job.Run(ctx)
}

func (q *JobQueue) Submit(name string, jobFunc func(ctx context.Context)) error {
	job := NamedJob{Name: name, Run: jobFunc}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrJobQueueFull, name)
	}
}
