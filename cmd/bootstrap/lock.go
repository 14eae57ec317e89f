package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"pride-notify/internal/infra/lock"
	"pride-notify/internal/pkg/clock"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/usecase/dispatch"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var LockModule = fx.Module("lock",
	fx.Provide(
		NewLocker,
	),
)

// NewLocker uses Redis when REDIS_ADDR is set so that several replicas share
// one lock per category; otherwise the lock is process-local.
func NewLocker(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (dispatch.Locker, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("run lock is process-local", "reason", "REDIS_ADDR not set")
		return lock.NewLocalLocker(clk), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := lock.Connect(ctx, &goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	logger.Info("run lock backed by redis", "addr", cfg.Redis.Addr)
	return lock.NewRedisLocker(client), nil
}
