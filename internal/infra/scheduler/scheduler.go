// Package scheduler fires category dispatches on cron specs and runs delayed
// retries on the process' own timers.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"

	"github.com/robfig/cron/v3"
)

// Runner is the orchestrator entry point invoked on every tick.
type Runner interface {
	Run(ctx context.Context, category string) (*dispatch.BatchResult, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
	wg      sync.WaitGroup
}

func New(loc *time.Location, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Register adds one cron entry per category. Categories already running are
// skipped by the run lock, not by the cron.
func (s *Scheduler) Register(runner Runner, specs map[string]string) error {
	for category, spec := range specs {
		id, err := s.cron.AddFunc(spec, func() {
			s.wg.Add(1)
			defer s.wg.Done()
			if _, err := runner.Run(s.ctx, category); err != nil {
				s.logger.Warn("scheduled dispatch ended with error", "category", category, "error", err)
			}
		})
		if err != nil {
			return errs.Wrapf(err, "invalid schedule %q for %s", spec, category)
		}
		s.logger.Info("dispatch scheduled", "category", category, "spec", spec, "entry", id)
	}
	return nil
}

// After runs task once delay has passed, unless the scheduler is stopped first.
func (s *Scheduler) After(delay time.Duration, task func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.logger.Warn("scheduler stopped, dropping delayed task", "delay", delay)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.timers, timer)
		s.wg.Add(1)
		s.mu.Unlock()

		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("delayed task panicked", "panic", r)
			}
		}()
		task(s.ctx)
	})
	s.timers[timer] = struct{}{}
}

// Pending reports how many delayed tasks have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels pending timers, stops the cron and waits for in-flight runs
// until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for t := range s.timers {
		t.Stop()
	}
	dropped := len(s.timers)
	s.timers = make(map[*time.Timer]struct{})
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("pending retries dropped on shutdown", "count", dropped)
	}

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return errs.Wrap(ctx.Err(), "wait for in-flight dispatches")
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
