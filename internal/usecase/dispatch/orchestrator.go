package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/clock"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/metrics"

	"github.com/oklog/ulid/v2"
)

// ErrUnexpected marks send/record failures that abort the batch and send it to retry.
var ErrUnexpected = errs.New("unexpected batch failure")

// ErrWrongChannel marks a record sent to an endpoint for a channel it does not render to.
var ErrWrongChannel = errs.New("wrong channel")

const lockKeyPrefix = "notify:lock:"

type Options struct {
	Policy           notification.RetryPolicy
	ThrottleInterval time.Duration
	LockTTL          time.Duration
	TestMode         TestMode
}

type Orchestrator struct {
	source    SourceClient
	gateway   Gateway
	recorder  *Recorder
	scheduler Scheduler
	locker    Locker
	alerter   Alerter
	clock     clock.Clock
	logger    *slog.Logger
	opts      Options

	newThrottle func(time.Duration) Throttle
}

func NewOrchestrator(
	source SourceClient,
	gateway Gateway,
	recorder *Recorder,
	scheduler Scheduler,
	locker Locker,
	alerter Alerter,
	clk clock.Clock,
	logger *slog.Logger,
	opts Options,
) *Orchestrator {
	if opts.Policy.MaxAttempts < 1 {
		opts.Policy = notification.DefaultRetryPolicy()
	}
	return &Orchestrator{
		source:      source,
		gateway:     gateway,
		recorder:    recorder,
		scheduler:   scheduler,
		locker:      locker,
		alerter:     alerter,
		clock:       clk,
		logger:      logger,
		opts:        opts,
		newThrottle: NewThrottle,
	}
}

type classified struct {
	index   int
	record  notification.RawRecord
	variant notification.Variant
	// channel, when set, is the only channel the rendered message may use.
	channel notification.Channel
}

// Dispatch runs one invocation for category and never schedules a retry.
// A non-nil error means the batch as a whole failed.
func (o *Orchestrator) Dispatch(ctx context.Context, category string, mode RecordMode) (*BatchResult, error) {
	spec, err := notification.LookupCategory(category)
	if err != nil {
		return nil, err
	}
	run := notification.RunInfo{RunID: ulid.Make().String(), Attempt: 1}
	return o.attempt(ctx, spec, run, mode)
}

// Run is the scheduled entry point: attempt one of a retry chain. Batch-level
// failures are re-invoked through the Scheduler until the policy is exhausted.
func (o *Orchestrator) Run(ctx context.Context, category string) (*BatchResult, error) {
	spec, err := notification.LookupCategory(category)
	if err != nil {
		return nil, err
	}
	return o.runChain(ctx, spec, ulid.Make().String(), o.opts.Policy.Start())
}

func (o *Orchestrator) runChain(ctx context.Context, spec notification.CategorySpec, runID string, state notification.RetryState) (*BatchResult, error) {
	res, err := o.attempt(ctx, spec, notification.RunInfo{RunID: runID, Attempt: state.Attempt}, RecordPerMessage)
	if err == nil {
		return res, nil
	}

	logger := o.logger.With("category", spec.Name, "run_id", runID, "attempt", state.Attempt)

	if !Retryable(err) {
		if errs.Is(err, errs.ErrFatal) {
			o.abandon(ctx, spec, runID, state.Attempt, "fatal", err)
		}
		return res, err
	}

	next, ok := o.opts.Policy.Next(state)
	if !ok {
		o.abandon(ctx, spec, runID, state.Attempt, "exhausted", err)
		return res, errs.Mark(err, errs.ErrRetryExhausted)
	}

	logger.Warn("batch failed, retry scheduled",
		"next_attempt", next.Attempt, "max_attempts", next.MaxAttempts,
		"delay", state.NextDelay, "error", err)
	metrics.RetriesScheduledTotal.WithLabelValues(string(spec.Name)).Inc()

	res.RetryScheduled = true
	res.RetryIn = state.NextDelay
	o.scheduler.After(state.NextDelay, func(ctx context.Context) {
		_, _ = o.runChain(ctx, spec, runID, next)
	})
	return res, err
}

func (o *Orchestrator) abandon(ctx context.Context, spec notification.CategorySpec, runID string, attempts int, reason string, err error) {
	o.logger.Error("batch abandoned",
		"category", spec.Name, "run_id", runID, "attempts", attempts, "reason", reason, "error", err)
	metrics.BatchesAbandonedTotal.WithLabelValues(string(spec.Name), reason).Inc()
	o.alerter.BatchAbandoned(context.WithoutCancel(ctx), Abandonment{
		Category: spec.Name,
		RunID:    runID,
		Attempts: attempts,
		Reason:   reason,
		Err:      err,
	})
}

// attempt walks Fetching -> Classifying -> Sending -> Recording -> Done once.
func (o *Orchestrator) attempt(ctx context.Context, spec notification.CategorySpec, run notification.RunInfo, mode RecordMode) (res *BatchResult, err error) {
	logger := o.logger.With("category", spec.Name, "run_id", run.RunID, "attempt", run.Attempt)
	res = &BatchResult{
		Category:  spec.Name,
		RunID:     run.RunID,
		Attempt:   run.Attempt,
		State:     StateFetching,
		StartedAt: o.clock.Now(),
	}
	defer func() {
		res.FinishedAt = o.clock.Now()
		if err != nil {
			res.State = StateFailed
			res.Err = err
		}
		metrics.BatchesTotal.WithLabelValues(string(spec.Name), string(res.State)).Inc()
	}()

	key := lockKeyPrefix + string(spec.Name)
	token, locked, err := o.locker.Acquire(ctx, key, o.opts.LockTTL)
	if err != nil {
		return res, errs.Mark(errs.Wrap(err, "acquire run lock"), ErrUnexpected)
	}
	if !locked {
		logger.Warn("another invocation holds the category lock, skipping")
		return res, errs.Mark(errs.Newf("category %s", spec.Name), errs.ErrBatchInProgress)
	}
	defer func() {
		if relErr := o.locker.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
			logger.Warn("failed to release run lock", "error", relErr)
		}
	}()

	logger.Info("fetching batch")
	records, err := o.source.Fetch(ctx, spec)
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		return res, err
	}
	res.Fetched = len(records)

	res.State = StateClassifying
	items, err := o.classify(records, res, logger)
	if err != nil {
		return res, err
	}
	items = o.opts.TestMode.limit(items, logger)

	res.State = StateSending
	session, err := o.openSession(ctx)
	if err != nil {
		return res, err
	}
	defer o.closeSession(session, logger)

	return res, o.sendAll(ctx, session, items, run, mode, res, logger)
}

func (o *Orchestrator) openSession(ctx context.Context) (GatewaySession, error) {
	session, err := o.gateway.Open(ctx)
	if err != nil {
		if errs.Is(err, errs.ErrFatal) {
			return nil, err
		}
		return nil, errs.Mark(errs.Wrap(err, "open gateway session"), ErrUnexpected)
	}
	return session, nil
}

func (o *Orchestrator) closeSession(session GatewaySession, logger *slog.Logger) {
	if err := session.Close(); err != nil {
		logger.Warn("failed to close gateway session", "error", err)
	}
}

// sendAll delivers items in order through one session, throttled, and records
// every outcome according to mode.
func (o *Orchestrator) sendAll(ctx context.Context, session GatewaySession, items []classified, run notification.RunInfo, mode RecordMode, res *BatchResult, logger *slog.Logger) (err error) {
	throttle := o.newThrottle(o.opts.ThrottleInterval)
	pending := make([]*notification.Outcome, 0, len(items))
	if mode == RecordBulk {
		// Whatever was sent gets recorded, even when the loop exits early.
		defer func() {
			res.State = StateRecording
			if ferr := o.recorder.PersistBatch(context.WithoutCancel(ctx), pending); ferr != nil {
				err = errs.Join(err, errs.Mark(ferr, ErrUnexpected))
			}
			if err == nil {
				o.finish(res, logger)
			}
		}()
	}

	for _, item := range items {
		if err := throttle.Wait(ctx); err != nil {
			return errs.Wrap(err, "throttle wait")
		}

		outcome, sendErr := o.deliver(ctx, session, item, run, logger)
		res.Outcomes = append(res.Outcomes, outcome)

		if mode == RecordPerMessage {
			res.State = StateRecording
			if err := o.recorder.Persist(ctx, outcome); err != nil {
				return errs.Mark(err, ErrUnexpected)
			}
			res.State = StateSending
		} else {
			pending = append(pending, outcome)
		}

		if sendErr != nil {
			return errs.Mark(sendErr, ErrUnexpected)
		}
	}

	if mode == RecordPerMessage {
		o.finish(res, logger)
	}
	return nil
}

func (o *Orchestrator) finish(res *BatchResult, logger *slog.Logger) {
	res.State = StateDone
	logger.Info("batch complete",
		"fetched", res.Fetched,
		"sent", res.Succeeded(),
		"failed", res.Failed(),
		"rejected", len(res.Rejections),
		"duration", o.clock.Now().Sub(res.StartedAt))
}

// classify keeps classifiable records in order and turns the rest into rejections.
// A non-empty batch with nothing classifiable is a batch-level failure.
func (o *Orchestrator) classify(records []notification.RawRecord, res *BatchResult, logger *slog.Logger) ([]classified, error) {
	items := make([]classified, 0, len(records))
	var firstErr error
	for i, rec := range records {
		v, err := notification.Classify(rec)
		if err != nil {
			var ce *notification.ClassificationError
			fields := rec.FieldNames()
			if errors.As(err, &ce) {
				fields = ce.Fields
			}
			res.Rejections = append(res.Rejections, Rejection{Index: i, Fields: fields, Err: err})
			metrics.RejectionsTotal.WithLabelValues(string(res.Category)).Inc()
			logger.Warn("record rejected by classifier", "index", i, "fields", fields)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		items = append(items, classified{index: i, record: rec, variant: v})
	}
	if len(items) == 0 && len(records) > 0 {
		return nil, errs.Wrapf(firstErr, "all %d records unclassifiable", len(records))
	}
	return items, nil
}

// deliver renders and sends one record. Render and gateway failures become
// failed outcomes; any other send error is returned so the batch can be retried.
func (o *Orchestrator) deliver(ctx context.Context, session GatewaySession, item classified, run notification.RunInfo, logger *slog.Logger) (*notification.Outcome, error) {
	msg, err := notification.Render(item.record, item.variant)
	if err != nil {
		logger.Warn("render failed", "index", item.index, "variant", item.variant, "error", err)
		if msg == nil {
			msg = &notification.Message{Variant: item.variant}
		}
		return o.recorder.Record(msg, nil, err, run), nil
	}
	if item.channel != "" && msg.Channel != item.channel {
		err := errs.Mark(errs.Newf("record renders to %s, only %s is accepted here", msg.Channel, item.channel), ErrWrongChannel)
		logger.Warn("record skipped", "index", item.index, "variant", item.variant, "error", err)
		return o.recorder.Record(msg, nil, err, run), nil
	}
	msg = o.opts.TestMode.address(msg)

	resp, err := o.send(ctx, session, msg)
	outcome := o.recorder.Record(msg, resp, err, run)
	if err == nil {
		logger.Debug("message sent", "index", item.index, "variant", item.variant)
		return outcome, nil
	}

	var gwErr *notification.GatewayError
	if errors.As(err, &gwErr) {
		logger.Warn("gateway rejected message", "index", item.index, "variant", item.variant, "error", err)
		return outcome, nil
	}
	logger.Error("unexpected send failure", "index", item.index, "variant", item.variant, "error", err)
	return outcome, err
}

func (o *Orchestrator) send(ctx context.Context, session GatewaySession, msg *notification.Message) (resp *GatewayResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during send: %v", r)
		}
	}()
	return session.Send(ctx, msg)
}

// Retryable reports whether a batch-level error should re-invoke the batch.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errs.Is(err, errs.ErrFatal) || errs.Is(err, errs.ErrBatchInProgress) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *notification.SourceError
	var ce *notification.ClassificationError
	return errors.As(err, &se) || errors.As(err, &ce) || errs.Is(err, ErrUnexpected)
}
