package dispatch

import (
	"context"
	"log/slog"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/clock"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/pkg/metrics"
)

// Recorder turns a send result into exactly one Outcome and persists it.
type Recorder struct {
	repo   OutcomeRepository
	clock  clock.Clock
	logger *slog.Logger
}

func NewRecorder(repo OutcomeRepository, clk clock.Clock, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, clock: clk, logger: logger}
}

// Record builds the outcome for msg. A nil sendErr means success.
func (r *Recorder) Record(msg *notification.Message, resp *GatewayResponse, sendErr error, run notification.RunInfo) *notification.Outcome {
	var o *notification.Outcome
	if sendErr != nil {
		o = notification.NewFailureOutcome(msg, sendErr, run, r.clock.Now())
	} else {
		var payload map[string]any
		if resp != nil {
			payload = resp.Payload
		}
		o = notification.NewSuccessOutcome(msg, payload, run, r.clock.Now())
	}
	metrics.OutcomesTotal.WithLabelValues(string(o.Variant()), o.Status()).Inc()
	return o
}

func (r *Recorder) Persist(ctx context.Context, o *notification.Outcome) error {
	if err := r.repo.Append(ctx, o); err != nil {
		r.logger.Error("failed to record outcome",
			"variant", o.Variant(), "outcome_id", o.ID(), "error", err)
		return errs.Wrap(err, "append outcome")
	}
	return nil
}

func (r *Recorder) PersistBatch(ctx context.Context, outcomes []*notification.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	if err := r.repo.AppendBatch(ctx, outcomes); err != nil {
		r.logger.Error("failed to record outcome batch", "count", len(outcomes), "error", err)
		return errs.Wrap(err, "append outcome batch")
	}
	return nil
}
