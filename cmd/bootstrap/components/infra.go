package components

import (
	"context"
	"log/slog"
	"time"

	"pride-notify/internal/infra/alert"
	"pride-notify/internal/infra/gateway"
	"pride-notify/internal/infra/scheduler"
	"pride-notify/internal/infra/source"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/secret"
	"pride-notify/internal/usecase/dispatch"

	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		fx.Annotate(
			NewSourceClient,
			fx.As(new(dispatch.SourceClient)),
		),
		fx.Annotate(
			NewGatewayClient,
			fx.As(new(dispatch.Gateway)),
		),
		fx.Annotate(
			NewAlerter,
			fx.As(new(dispatch.Alerter)),
		),
		fx.Annotate(
			NewScheduler,
			fx.As(fx.Self()),
			fx.As(new(dispatch.Scheduler)),
		),
	),
)

func NewSourceClient(cfg config.Config, decrypter secret.Decrypter, logger *slog.Logger) *source.Client {
	return source.NewClient(cfg.Sources, decrypter, logger)
}

func NewGatewayClient(cfg config.Config, decrypter secret.Decrypter, logger *slog.Logger) *gateway.Client {
	return gateway.NewClient(cfg.Gateway, decrypter, logger)
}

func NewAlerter(cfg config.Config, gw dispatch.Gateway, logger *slog.Logger) *alert.Alerter {
	return alert.NewAlerter(gw, cfg.Dispatch.AlertEmails, logger)
}

// NewScheduler stops pending retries and waits for in-flight batches on shutdown.
func NewScheduler(lc fx.Lifecycle, loc *time.Location, logger *slog.Logger) *scheduler.Scheduler {
	s := scheduler.New(loc, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
	return s
}
