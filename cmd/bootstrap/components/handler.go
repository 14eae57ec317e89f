package components

import (
	"pride-notify/internal/handler"
	"pride-notify/internal/handler/api"
	"pride-notify/internal/handler/middleware"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/jwt"
	"pride-notify/internal/usecase/dispatch"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReportHandler,
		func(o *dispatch.Orchestrator) api.Dispatcher { return o },
		api.NewDispatchHandler,
		func(o *dispatch.Orchestrator) api.OperatorSender { return o },
		api.NewSendHandler,
		NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthMiddleware(cfg config.Config, jwtService *jwt.Service) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtService, cfg.Trigger.APIKeyHash)
}
