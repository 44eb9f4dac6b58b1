package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/domain/repository"
	"github.com/polkiloo/digistore/internal/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// OrderService is the single state machine behind every admin entry point.
type OrderService struct {
	store       repository.Store
	ledger      *InventoryLedger
	fulfillment *Fulfillment
	files       FileStore
	notify      *Dispatcher
	copy        storeCopy
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Store
}

// NewOrderService constructs OrderService.
func NewOrderService(
	store repository.Store,
	ledger *InventoryLedger,
	fulfillment *Fulfillment,
	files FileStore,
	notify *Dispatcher,
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Store,
) *OrderService {
	return &OrderService{
		store:       store,
		ledger:      ledger,
		fulfillment: fulfillment,
		files:       files,
		notify:      notify,
		copy:        newStoreCopy(cfg),
		now:         time.Now,
		logger:      logger,
		metrics:     m,
	}
}

// Submit validates the checkout form, stores the payment proof and records a
// pending order. Operator and buyer notifications are best effort.
func (s *OrderService) Submit(ctx context.Context, sub *model.OrderSubmission) (*model.OrderDetails, error) {
	if err := ValidateSubmission(sub); err != nil {
		return nil, err
	}

	product, err := s.store.Products().Get(ctx, sub.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Available() {
		return nil, domainErrors.ErrProductUnavailable
	}

	proofPath, err := s.files.SaveProof(ctx, sub.Proof.Filename, sub.Proof.Content)
	if err != nil {
		return nil, fmt.Errorf("save payment proof: %w", err)
	}

	actor := model.BuyerActor(sub.BuyerName)
	var created *model.Order
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		var err error
		created, err = repos.Orders().Create(ctx, &model.Order{
			ProductID:        product.ID,
			BuyerName:        sub.BuyerName,
			Email:            sub.Email,
			Phone:            sub.Phone,
			TelegramUsername: sub.TelegramUsername,
			PaymentMethod:    sub.PaymentMethod,
			PaymentProofPath: proofPath,
			TransactionID:    sub.TransactionID,
		})
		if err != nil {
			return err
		}
		return repos.Audit().Append(ctx, model.AuditEntry{
			OrderID: created.ID,
			Action:  model.AuditOrderCreated,
			Actor:   actor,
		})
	})
	if err != nil {
		if delErr := s.files.DeleteProof(proofPath); delErr != nil {
			s.logger.Warn("orphaned payment proof",
				slog.String("path", proofPath),
				slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	details := &model.OrderDetails{Order: *created, Product: *product}
	s.metrics.Transition(string(model.OrderStatusPending), actor)
	s.logger.Info("order submitted",
		slog.Int64("order_id", details.ID),
		slog.Int64("product_id", product.ID),
		slog.String("actor", actor),
	)

	notifyCtx := context.WithoutCancel(ctx)
	s.notify.warn("operator alert failed", details.ID, s.notify.Operator(notifyCtx, model.OperatorAlert{
		Text:          s.copy.newOrderAlert(details),
		ImagePath:     proofPath,
		ReviewOrderID: details.ID,
	}))
	if details.Email != "" {
		s.notify.warn("order received email failed", details.ID, s.notify.Email(notifyCtx, s.copy.receivedEmail(details)))
	}
	return details, nil
}

// Confirm moves a pending order to confirmed, allocates inventory in the same
// transaction and then delivers. Delivery problems never undo the confirmation.
func (s *OrderService) Confirm(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	var (
		details  *model.OrderDetails
		alloc    *model.Allocation
		allocErr error
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		order, err := repos.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return domainErrors.ErrNotPending
		}

		now := s.now()
		if err := repos.Orders().MarkConfirmed(ctx, orderID, now); err != nil {
			return err
		}

		alloc, allocErr = s.ledger.Allocate(ctx, repos, order.Product, orderID)
		if allocErr != nil && !errors.Is(allocErr, domainErrors.ErrOutOfStock) {
			return allocErr
		}

		if err := repos.Audit().Append(ctx, model.AuditEntry{
			OrderID: orderID,
			Action:  model.AuditOrderConfirmed,
			Actor:   actor,
			Note:    allocationNote(alloc, allocErr),
		}); err != nil {
			return err
		}

		order.Status = model.OrderStatusConfirmed
		order.ConfirmedAt = &now
		details = order
		return nil
	})
	if err != nil {
		s.logTransitionError("confirm", orderID, actor, err)
		return nil, err
	}

	s.metrics.Transition(string(model.OrderStatusConfirmed), actor)
	s.logger.Info("order confirmed",
		slog.Int64("order_id", orderID),
		slog.Int64("product_id", details.ProductID),
		slog.String("actor", actor),
		slog.Bool("allocated", allocErr == nil),
	)

	report := s.fulfillment.Deliver(context.WithoutCancel(ctx), details, alloc, allocErr)
	return &model.TransitionResult{Order: details, Report: report}, nil
}

// Reject moves a pending order to rejected and tells the buyer.
func (s *OrderService) Reject(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	var details *model.OrderDetails
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		order, err := repos.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return domainErrors.ErrNotPending
		}
		if err := repos.Orders().MarkRejected(ctx, orderID); err != nil {
			return err
		}
		if err := repos.Audit().Append(ctx, model.AuditEntry{
			OrderID: orderID,
			Action:  model.AuditOrderRejected,
			Actor:   actor,
		}); err != nil {
			return err
		}
		order.Status = model.OrderStatusRejected
		details = order
		return nil
	})
	if err != nil {
		s.logTransitionError("reject", orderID, actor, err)
		return nil, err
	}

	s.metrics.Transition(string(model.OrderStatusRejected), actor)
	s.logger.Info("order rejected",
		slog.Int64("order_id", orderID),
		slog.Int64("product_id", details.ProductID),
		slog.String("actor", actor),
	)

	notifyCtx := context.WithoutCancel(ctx)
	report := &model.DeliveryReport{OrderID: orderID, Message: s.copy.rejectionChat(details)}
	var errs error
	if details.TelegramUsername != "" {
		report.ChatAttempted = true
		err := s.notify.Chat(notifyCtx, details.TelegramUsername, report.Message)
		report.ChatSent = err == nil
		errs = multierr.Append(errs, err)
	}
	if details.Email != "" {
		report.EmailAttempted = true
		err := s.notify.Email(notifyCtx, s.copy.rejectionEmail(details))
		report.EmailSent = err == nil
		errs = multierr.Append(errs, err)
	}
	report.Err = errs
	s.notify.warn("rejection notice failed", orderID, errs)

	return &model.TransitionResult{Order: details, Report: report}, nil
}

// Redeliver repeats delivery for a confirmed order without allocating again.
// Key orders resend their assigned key; file orders get a fresh link.
func (s *OrderService) Redeliver(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	details, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if details.Status != model.OrderStatusConfirmed {
		return nil, domainErrors.ErrNotConfirmed
	}

	alloc := &model.Allocation{ProductType: details.Product.Type, StockAfter: details.Product.StockCount}
	var allocErr error
	switch details.Product.Type {
	case model.ProductTypeKey:
		key, err := s.store.Keys().GetByOrder(ctx, orderID)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			alloc, allocErr = nil, domainErrors.ErrOutOfStock
		case err != nil:
			return nil, err
		default:
			alloc.Key = key
		}
	case model.ProductTypeFile:
		// A file order confirmed without stock stays out of stock.
		short, err := s.confirmedOutOfStock(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if short {
			alloc, allocErr = nil, domainErrors.ErrOutOfStock
		}
	}

	if err := s.store.Audit().Append(ctx, model.AuditEntry{
		OrderID: orderID,
		Action:  model.AuditOrderRedelivered,
		Actor:   actor,
	}); err != nil {
		return nil, err
	}
	s.logger.Info("order redelivery requested",
		slog.Int64("order_id", orderID),
		slog.String("actor", actor),
	)

	report := s.fulfillment.Deliver(context.WithoutCancel(ctx), details, alloc, allocErr)
	return &model.TransitionResult{Order: details, Report: report}, nil
}

// Get returns an order with its product snapshot.
func (s *OrderService) Get(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	return s.store.Orders().Get(ctx, orderID)
}

// List returns newest orders first, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.NewValidationError("status", "is invalid")
	}
	return s.store.Orders().List(ctx, status, clampLimit(limit))
}

// AuditTrail returns the audit entries of an order, oldest first.
func (s *OrderService) AuditTrail(ctx context.Context, orderID int64) ([]model.AuditEntry, error) {
	if _, err := s.store.Orders().Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.Audit().ListByOrder(ctx, orderID)
}

// ListTokens returns the newest download tokens.
func (s *OrderService) ListTokens(ctx context.Context, limit int) ([]model.TokenListing, error) {
	return s.store.Tokens().List(ctx, clampLimit(limit))
}

// Receipt returns the stored receipt path of an order.
func (s *OrderService) Receipt(ctx context.Context, orderID int64) (string, error) {
	order, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.ReceiptPath == "" || !s.files.Exists(order.ReceiptPath) {
		return "", domainErrors.ErrNotFound
	}
	return order.ReceiptPath, nil
}

func (s *OrderService) logTransitionError(action string, orderID int64, actor string, err error) {
	level := slog.LevelError
	if errors.Is(err, domainErrors.ErrNotPending) || errors.Is(err, domainErrors.ErrNotFound) {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, action+" failed",
		slog.Int64("order_id", orderID),
		slog.String("actor", actor),
		slog.String("error", err.Error()),
	)
}

// confirmedOutOfStock reports whether the confirmation of orderID allocated nothing.
func (s *OrderService) confirmedOutOfStock(ctx context.Context, orderID int64) (bool, error) {
	entries, err := s.store.Audit().ListByOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Action == model.AuditOrderConfirmed {
			return e.Note == noteOutOfStock, nil
		}
	}
	return false, nil
}

const noteOutOfStock = "out of stock"

func allocationNote(alloc *model.Allocation, err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrOutOfStock):
		return noteOutOfStock
	case alloc == nil:
		return ""
	case alloc.Key != nil:
		return fmt.Sprintf("key #%d", alloc.Key.ID)
	case alloc.ProductType == model.ProductTypeFile:
		return fmt.Sprintf("file stock %d", alloc.StockAfter)
	}
	return ""
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}
