package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/polkiloo/digistore/internal/config"
)

const serviceName = "digistore"

// New builds the process logger. Records go to stdout as JSON unless the
// text format is configured for local runs.
func New(cfg *config.Config) *slog.Logger {
	return newWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
}

func newWithWriter(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", serviceName))
}
