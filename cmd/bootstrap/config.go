package bootstrap

import (
	"time"

	"pride-notify/internal/pkg/clock"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/errs"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)

var RuntimeModule = fx.Module("runtime",
	fx.Provide(
		NewLocation,
		clock.NewRealClock,
	),
)

// NewLocation is the business timezone used by cron specs and report date ranges.
func NewLocation(cfg config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Schedule.TimeZone)
	if err != nil {
		return nil, errs.Wrapf(err, "load timezone %q", cfg.Schedule.TimeZone)
	}
	return loc, nil
}
