package jobq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAndRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewJobQueue(2)
	q.Start(ctx)

	done := make(chan struct{})
	require.NoError(t, q.Submit("test-job", func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestSubmitFullQueue(t *testing.T) {
	// queue is never started, so nothing drains it
	q := NewJobQueue(1)
	require.NoError(t, q.Submit("first", func(context.Context) {}))

	err := q.Submit("second", func(context.Context) {})
	assert.ErrorIs(t, err, ErrJobQueueFull)
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewJobQueue(2)
	q.Start(ctx)

	require.NoError(t, q.Submit("bad", func(context.Context) { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, q.Submit("good", func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}
