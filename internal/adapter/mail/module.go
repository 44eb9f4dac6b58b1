package mail

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

// Module provides the email transport.
var Module = fx.Provide(
	fx.Annotate(newSender, fx.As(new(usecase.Mailer))),
)

func newSender(cfg *config.Config, logger *slog.Logger) *Sender {
	if cfg.ResendAPIKey == "" {
		logger.Warn("resend api key not set, email notifications disabled")
	}
	return NewSender(cfg.ResendAPIKey, cfg.MailFrom, cfg.MailName, cfg.SupportContact, logger)
}
