package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the process logger and installs it as the slog default so
// library code logging through slog shares the same handler.
var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(slog.SetDefault),
)
