package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/usecase"
)

// Module exposes the Bot API client as messenger and bot commander.
var Module = fx.Provide(
	fx.Annotate(newClient, fx.As(new(usecase.Messenger)), fx.As(new(usecase.BotCommander))),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	if p.Config.TelegramBotToken == "" {
		p.Logger.Warn("telegram bot token not set, chat notifications disabled")
	}
	return NewClient(p.Config.TelegramAPIURL, p.Config.TelegramBotToken, p.Config.TelegramAdminChatID, p.Logger)
}
