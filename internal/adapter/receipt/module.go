package receipt

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

// Module provides the PDF receipt generator.
var Module = fx.Provide(
	fx.Annotate(newGenerator, fx.As(new(usecase.ReceiptGenerator))),
)

func newGenerator(cfg *config.Config, logger *slog.Logger) *Generator {
	return NewGenerator(cfg.ReceiptDir, cfg.StoreName, cfg.SupportContact, logger)
}
