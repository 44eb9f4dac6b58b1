package test

import (
	"context"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

// StoreFacadeStub implements the HTTP facade contracts through function
// overrides. Unset functions succeed, except Download which reports an
// invalid token.
type StoreFacadeStub struct {
	AuthFacadeStub

	SubmitFn    func(context.Context, *model.OrderSubmission) (*model.OrderDetails, error)
	OrderFn     func(context.Context, int64) (*model.OrderDetails, error)
	OrdersFn    func(context.Context, model.OrderStatus, int) ([]model.OrderDetails, error)
	ConfirmFn   func(context.Context, int64, string) (*model.TransitionResult, error)
	RejectFn    func(context.Context, int64, string) (*model.TransitionResult, error)
	RedeliverFn func(context.Context, int64, string) (*model.TransitionResult, error)
	AuditFn     func(context.Context, int64) ([]model.AuditEntry, error)
	ReceiptFn   func(context.Context, int64) (string, error)
	ImportFn    func(context.Context, int64, string) (int, error)
	DeleteKeyFn func(context.Context, int64) error
	TokensFn    func(context.Context, int) ([]model.TokenListing, error)
	DownloadFn  func(context.Context, string) (*model.Download, error)
	BotFn       func(context.Context, model.BotUpdate) error
	HealthErr   error
}

func (s StoreFacadeStub) SubmitOrder(ctx context.Context, sub *model.OrderSubmission) (*model.OrderDetails, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, sub)
	}
	return &model.OrderDetails{Order: model.Order{ID: 1, Status: model.OrderStatusPending}}, nil
}

func (s StoreFacadeStub) Order(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID)
	}
	return &model.OrderDetails{Order: model.Order{ID: orderID, Status: model.OrderStatusPending}}, nil
}

func (s StoreFacadeStub) Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, status, limit)
	}
	return nil, nil
}

func (s StoreFacadeStub) ConfirmOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID, actor)
	}
	return transition(orderID, model.OrderStatusConfirmed), nil
}

func (s StoreFacadeStub) RejectOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, orderID, actor)
	}
	return transition(orderID, model.OrderStatusRejected), nil
}

func (s StoreFacadeStub) RedeliverOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	if s.RedeliverFn != nil {
		return s.RedeliverFn(ctx, orderID, actor)
	}
	return transition(orderID, model.OrderStatusConfirmed), nil
}

func (s StoreFacadeStub) AuditTrail(ctx context.Context, orderID int64) ([]model.AuditEntry, error) {
	if s.AuditFn != nil {
		return s.AuditFn(ctx, orderID)
	}
	return nil, nil
}

func (s StoreFacadeStub) Receipt(ctx context.Context, orderID int64) (string, error) {
	if s.ReceiptFn != nil {
		return s.ReceiptFn(ctx, orderID)
	}
	return "", nil
}

func (s StoreFacadeStub) ImportKeys(ctx context.Context, productID int64, raw string) (int, error) {
	if s.ImportFn != nil {
		return s.ImportFn(ctx, productID, raw)
	}
	return 0, nil
}

func (s StoreFacadeStub) DeleteKey(ctx context.Context, keyID int64) error {
	if s.DeleteKeyFn != nil {
		return s.DeleteKeyFn(ctx, keyID)
	}
	return nil
}

func (s StoreFacadeStub) Tokens(ctx context.Context, limit int) ([]model.TokenListing, error) {
	if s.TokensFn != nil {
		return s.TokensFn(ctx, limit)
	}
	return nil, nil
}

func (s StoreFacadeStub) Download(ctx context.Context, token string) (*model.Download, error) {
	if s.DownloadFn != nil {
		return s.DownloadFn(ctx, token)
	}
	return nil, domainErrors.ErrInvalidToken
}

func (s StoreFacadeStub) HandleBotUpdate(ctx context.Context, update model.BotUpdate) error {
	if s.BotFn != nil {
		return s.BotFn(ctx, update)
	}
	return nil
}

func (s StoreFacadeStub) Health(context.Context) error {
	return s.HealthErr
}

// transition builds a clean result for an order moved to status.
func transition(orderID int64, status model.OrderStatus) *model.TransitionResult {
	return &model.TransitionResult{
		Order:  &model.OrderDetails{Order: model.Order{ID: orderID, Status: status}},
		Report: &model.DeliveryReport{OrderID: orderID},
	}
}
