package di

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/polkiloo/digistore/internal/adapter/dedup"
	"github.com/polkiloo/digistore/internal/adapter/files"
	"github.com/polkiloo/digistore/internal/adapter/mail"
	"github.com/polkiloo/digistore/internal/adapter/receipt"
	"github.com/polkiloo/digistore/internal/adapter/telegram"
	"github.com/polkiloo/digistore/internal/app"
	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/logger"
	"github.com/polkiloo/digistore/internal/metrics"
	"github.com/polkiloo/digistore/internal/pkg/auth"
	"github.com/polkiloo/digistore/internal/server/http/handlers"
	"github.com/polkiloo/digistore/internal/server/http/router"
	"github.com/polkiloo/digistore/internal/storage/postgres"
	"github.com/polkiloo/digistore/internal/usecase"
)

// CoreModule assembles storage, adapters and use cases without any listener.
// The operator CLI runs on top of it.
func CoreModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		telegram.Module,
		mail.Module,
		receipt.Module,
		files.Module,
		dedup.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		app.CoreModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module is the full HTTP service graph.
func Module(opts ...fx.Option) fx.Option {
	return CoreModule(append([]fx.Option{
		fx.Provide(func(f *app.StoreFacade) handlers.StoreFacade { return f }),
		router.Module,
		app.Module,
	}, opts...)...)
}

// EventLogger routes fx lifecycle events through the application logger.
// Routine events are logged at debug level.
var EventLogger = fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
	l := &fxevent.SlogLogger{Logger: logger}
	l.UseLogLevel(slog.LevelDebug)
	return l
})
