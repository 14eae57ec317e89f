package bootstrap

import (
	"context"
	"log/slog"

	"pride-notify/internal/infra/db"
	"pride-notify/internal/infra/outcomestore"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"
	"pride-notify/internal/usecase/queries"

	"go.uber.org/fx"
)

// OutcomeStore is satisfied by both outcome store dialects.
type OutcomeStore interface {
	dispatch.OutcomeRepository
	queries.OutcomeLogReadStore
}

var StoreModule = fx.Module("store",
	fx.Provide(
		fx.Annotate(
			NewOutcomeStore,
			fx.As(new(dispatch.OutcomeRepository)),
			fx.As(new(queries.OutcomeLogReadStore)),
		),
	),
)

// NewOutcomeStore opens the configured backend and brings its schema up to date.
func NewOutcomeStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (OutcomeStore, error) {
	ctx := context.Background()

	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		sqlDB, err := outcomestore.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := outcomestore.MigrateSQLite(ctx, sqlDB, logger); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return sqlDB.Close()
			},
		})
		logger.Info("outcome store ready", "driver", "sqlite", "path", cfg.Store.SQLitePath)
		return outcomestore.NewSQLiteStore(sqlDB, logger), nil

	case config.StoreDriverPostgres:
		pool, cleanup, err := db.Connect(cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := outcomestore.MigratePostgres(ctx, pool, logger); err != nil {
			cleanup()
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				cleanup()
				return nil
			},
		})
		logger.Info("outcome store ready", "driver", "postgres", "host", cfg.DB.Host, "db", cfg.DB.DBName)
		return outcomestore.NewPostgresStore(pool, logger), nil

	default:
		return nil, errs.Newf("unsupported outcome store %q", cfg.Store.Driver)
	}
}
