package components

import (
	"context"
	"log/slog"

	"pride-notify/internal/infra/scheduler"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/usecase/dispatch"

	"go.uber.org/fx"
)

var ScheduleModule = fx.Module("schedule",
	fx.Invoke(StartSchedule),
)

// StartSchedule registers one cron entry per configured category.
func StartSchedule(lc fx.Lifecycle, cfg config.Config, s *scheduler.Scheduler, o *dispatch.Orchestrator, logger *slog.Logger) error {
	if !cfg.Schedule.Enabled {
		logger.Info("cron schedule disabled, dispatch only via trigger API or notifyctl")
		return nil
	}
	if err := s.Register(o, cfg.Schedule.Specs()); err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
	})
	return nil
}
