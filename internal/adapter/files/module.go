package files

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

// Module provides the local file store.
var Module = fx.Provide(
	fx.Annotate(newLocalStore, fx.As(new(usecase.FileStore))),
)

func newLocalStore(cfg *config.Config, logger *slog.Logger) *LocalStore {
	return NewLocalStore(cfg.UploadDir, logger)
}
