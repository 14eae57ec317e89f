package bootstrap

import (
	"pride-notify/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// DispatchModule builds the dispatch pipeline from a config.Config supplied elsewhere.
var DispatchModule = fx.Options(
	RuntimeModule,
	LoggerModule,
	SecurityModule,
	StoreModule,
	LockModule,
	components.InfraModule,
	components.UseCaseModule,
)

// CoreModule is everything needed to dispatch: no HTTP server, no cron.
var CoreModule = fx.Options(
	ConfigModule,
	DispatchModule,
)

var Module = fx.Options(
	CoreModule,
	components.HandlerModule,
	components.ScheduleModule,
)
