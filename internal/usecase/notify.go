package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/metrics"
)

const (
	channelChat     = "chat"
	channelEmail    = "email"
	channelOperator = "operator"
	channelReceipt  = "receipt"
)

// Dispatcher runs every outbound call once with a bounded timeout.
type Dispatcher struct {
	messenger Messenger
	mailer    Mailer
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Store
}

// NewDispatcher constructs Dispatcher.
func NewDispatcher(messenger Messenger, mailer Mailer, cfg *config.Config, logger *slog.Logger, m *metrics.Store) *Dispatcher {
	return &Dispatcher{messenger: messenger, mailer: mailer, timeout: cfg.NotifyTimeout, logger: logger, metrics: m}
}

func (d *Dispatcher) call(ctx context.Context, channel string, fn func(context.Context) error) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	d.metrics.Notification(channel, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", channel, err)
	}
	return nil
}

// Chat sends text to a buyer chat handle.
func (d *Dispatcher) Chat(ctx context.Context, handle, text string) error {
	return d.call(ctx, channelChat, func(ctx context.Context) error {
		return d.messenger.SendToBuyer(ctx, handle, text)
	})
}

// Email sends an email to a buyer.
func (d *Dispatcher) Email(ctx context.Context, email model.Email) error {
	return d.call(ctx, channelEmail, func(ctx context.Context) error {
		return d.mailer.Send(ctx, email)
	})
}

// Operator alerts the store operator.
func (d *Dispatcher) Operator(ctx context.Context, alert model.OperatorAlert) error {
	return d.call(ctx, channelOperator, func(ctx context.Context) error {
		return d.messenger.NotifyOperator(ctx, alert)
	})
}

// warn logs a failed best-effort call without failing the caller.
func (d *Dispatcher) warn(msg string, orderID int64, err error) {
	if err == nil {
		return
	}
	d.logger.Warn(msg, slog.Int64("order_id", orderID), slog.String("error", err.Error()))
}
