package components

import (
	"log/slog"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/usecase/dispatch"
	"pride-notify/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		NewDispatchOptions,
		dispatch.NewRecorder,
		dispatch.NewOrchestrator,
		NewOutcomeQueries,
	),
)

func NewDispatchOptions(cfg config.Config, logger *slog.Logger) (dispatch.Options, error) {
	d := cfg.Dispatch
	policy, err := notification.NewRetryPolicy(d.RetryMaxAttempts, d.RetryDelay, d.RetryBackoff)
	if err != nil {
		return dispatch.Options{}, err
	}
	if d.TestMode {
		logger.Warn("dispatch test mode is ON", "recipient", d.TestRecipient, "limit", d.TestLimit)
	}
	return dispatch.Options{
		Policy:           policy,
		ThrottleInterval: d.ThrottleInterval,
		LockTTL:          d.LockTTL,
		TestMode: dispatch.TestMode{
			Enabled:        d.TestMode,
			Recipient:      d.TestRecipient,
			EmailRecipient: d.TestEmail,
			Limit:          d.TestLimit,
		},
	}, nil
}

func NewOutcomeQueries(store queries.OutcomeLogReadStore, loc *time.Location) queries.OutcomeQueries {
	return queries.NewOutcomeQueries(store, loc)
}
