package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/domain/repository"
	"github.com/polkiloo/digistore/internal/metrics"
)

// Degraded delivery reasons.
const (
	ReasonOutOfStock      = "out of stock"
	ReasonFileUnavailable = "file unavailable"
	ReasonTokenFailed     = "download link could not be issued"
	ReasonAllocation      = "inventory allocation failed"
	ReasonManual          = "bundle requires manual delivery"
)

// Fulfillment delivers confirmed orders to buyers.
type Fulfillment struct {
	store    repository.Store
	tokens   *TokenIssuer
	files    FileStore
	receipts ReceiptGenerator
	notify   *Dispatcher
	copy     storeCopy
	logger   *slog.Logger
	metrics  *metrics.Store
}

// NewFulfillment constructs Fulfillment.
func NewFulfillment(
	store repository.Store,
	tokens *TokenIssuer,
	files FileStore,
	receipts ReceiptGenerator,
	notify *Dispatcher,
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Store,
) *Fulfillment {
	return &Fulfillment{
		store:    store,
		tokens:   tokens,
		files:    files,
		receipts: receipts,
		notify:   notify,
		copy:     newStoreCopy(cfg),
		logger:   logger,
		metrics:  m,
	}
}

// Deliver composes the buyer message from the allocation outcome, attaches a
// receipt and sends it on every channel the buyer gave. It never fails: every
// problem is recorded on the returned report.
func (f *Fulfillment) Deliver(ctx context.Context, order *model.OrderDetails, alloc *model.Allocation, allocErr error) *model.DeliveryReport {
	report := &model.DeliveryReport{OrderID: order.ID}
	var errs error

	msg := f.compose(ctx, order, alloc, allocErr, report)
	if allocErr != nil && !errors.Is(allocErr, domainErrors.ErrOutOfStock) {
		errs = multierr.Append(errs, allocErr)
	}
	report.Message = msg.chat

	receipt, err := f.receipt(ctx, order)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	report.ReceiptPath = receipt

	if handle := order.TelegramUsername; handle != "" {
		report.ChatAttempted = true
		err := f.notify.Chat(ctx, handle, msg.chat)
		report.ChatSent = err == nil
		errs = multierr.Append(errs, err)
	}

	if order.Email != "" {
		report.EmailAttempted = true
		err := f.notify.Email(ctx, f.copy.confirmationEmail(order, msg.info, receipt))
		report.EmailSent = err == nil
		errs = multierr.Append(errs, err)
	}

	err = f.notify.Operator(ctx, model.OperatorAlert{Text: f.copy.deliveredAlert(order, report)})
	report.OperatorNotified = err == nil
	errs = multierr.Append(errs, err)

	report.Err = errs
	f.metrics.Delivery(string(report.Outcome()))

	attrs := []any{
		slog.Int64("order_id", order.ID),
		slog.Int64("product_id", order.ProductID),
		slog.String("outcome", string(report.Outcome())),
		slog.Bool("chat_sent", report.ChatSent),
		slog.Bool("email_sent", report.EmailSent),
	}
	if report.Degraded {
		attrs = append(attrs, slog.String("degraded_reason", report.DegradedReason))
	}
	if errs != nil {
		for _, e := range multierr.Errors(errs) {
			f.logger.Warn("delivery step failed", slog.Int64("order_id", order.ID), slog.String("error", e.Error()))
		}
		f.logger.Warn("order delivered with issues", attrs...)
	} else {
		f.logger.Info("order delivered", attrs...)
	}
	return report
}

func (f *Fulfillment) compose(ctx context.Context, order *model.OrderDetails, alloc *model.Allocation, allocErr error, report *model.DeliveryReport) delivery {
	degrade := func(reason, subject string) delivery {
		report.Degraded = true
		report.DegradedReason = reason
		return f.copy.degradedDelivery(order, subject)
	}

	switch order.Product.Type {
	case model.ProductTypeKey:
		if allocErr != nil || alloc == nil || alloc.Key == nil {
			return degrade(allocReason(allocErr), "Key")
		}
		report.InventoryAllocated = true
		return f.copy.keyDelivery(order, alloc.Key.Value)

	case model.ProductTypeFile:
		if allocErr != nil {
			return degrade(allocReason(allocErr), "File")
		}
		report.InventoryAllocated = true
		path := order.Product.FilePath
		if path == "" || !f.files.Exists(path) {
			return degrade(ReasonFileUnavailable, "File")
		}
		token, err := f.tokens.Issue(ctx, order.ID, order.ProductID, path)
		if err != nil {
			f.logger.Error("issue download token failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
			return degrade(ReasonTokenFailed, "File")
		}
		report.DownloadURL = f.copy.downloadURL(token.Token)
		return f.copy.fileDelivery(order, report.DownloadURL)

	default:
		report.InventoryAllocated = allocErr == nil
		return degrade(ReasonManual, "Bundle")
	}
}

// receipt reuses the stored receipt when the file is still there.
func (f *Fulfillment) receipt(ctx context.Context, order *model.OrderDetails) (string, error) {
	if order.ReceiptPath != "" && f.files.Exists(order.ReceiptPath) {
		return order.ReceiptPath, nil
	}

	var path string
	err := f.notify.call(ctx, channelReceipt, func(ctx context.Context) error {
		var err error
		path, err = f.receipts.Generate(ctx, order)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := f.store.Orders().SetReceiptPath(ctx, order.ID, path); err != nil {
		return path, fmt.Errorf("store receipt path: %w", err)
	}
	order.ReceiptPath = path
	return path, nil
}

func allocReason(err error) string {
	if err == nil || errors.Is(err, domainErrors.ErrOutOfStock) {
		return ReasonOutOfStock
	}
	return ReasonAllocation
}
