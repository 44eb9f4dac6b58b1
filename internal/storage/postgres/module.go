package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/repository"
)

// Module connects the order store and exposes it as repository.Store.
var Module = fx.Options(
	fx.Provide(
		newStorage,
		func(s *Storage) repository.Store { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

// registerLifecycle refuses to start while the database is unreachable and
// releases the pool on stop.
func registerLifecycle(lc fx.Lifecycle, storage *Storage, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			logger.Debug("order store ready")
			return nil
		},
		OnStop: func(context.Context) error {
			storage.Close()
			logger.Debug("order store closed")
			return nil
		},
	})
}
