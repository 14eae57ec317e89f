//go:build unit

package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"pride-notify/internal/infra/scheduler"
	"pride-notify/internal/usecase/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	last  atomic.Value
}

func (r *countingRunner) Run(_ context.Context, category string) (*dispatch.BatchResult, error) {
	r.calls.Add(1)
	r.last.Store(category)
	return &dispatch.BatchResult{}, nil
}

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	return scheduler.New(time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestScheduler_After(t *testing.T) {
	s := newScheduler(t)
	defer func() { _ = s.Stop(context.Background()) }()

	fired := make(chan struct{})
	s.After(20*time.Millisecond, func(ctx context.Context) {
		assert.NoError(t, ctx.Err())
		close(fired)
	})
	assert.Equal(t, 1, s.Pending())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never fired")
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestScheduler_StopDropsPendingTasks(t *testing.T) {
	s := newScheduler(t)

	var fired atomic.Bool
	s.After(50*time.Millisecond, func(context.Context) { fired.Store(true) })
	require.NoError(t, s.Stop(context.Background()))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())

	s.After(time.Millisecond, func(context.Context) { fired.Store(true) })
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load(), "tasks scheduled after Stop are dropped")
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_StopWaitsForRunningTask(t *testing.T) {
	s := newScheduler(t)

	started := make(chan struct{})
	var finished atomic.Bool
	s.After(time.Millisecond, func(context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})
	<-started

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
}

func TestScheduler_Register(t *testing.T) {
	s := newScheduler(t)
	runner := &countingRunner{}

	require.NoError(t, s.Register(runner, map[string]string{"loans_due": "@every 1s"}))
	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, "loans_due", runner.last.Load())
}

func TestScheduler_Register_InvalidSpec(t *testing.T) {
	s := newScheduler(t)
	err := s.Register(&countingRunner{}, map[string]string{"birthdays": "not a cron"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "birthdays")
}
