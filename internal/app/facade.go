package app

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StoreFacade exposes storefront operations to transports.
type StoreFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderService
	inventory *usecase.InventoryLedger
	tokens    *usecase.TokenIssuer
	bot       *usecase.BotService
	health    HealthChecker
}

func NewStoreFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderService,
	inventory *usecase.InventoryLedger,
	tokens *usecase.TokenIssuer,
	bot *usecase.BotService,
	health HealthChecker,
) *StoreFacade {
	return &StoreFacade{auth: auth, orders: orders, inventory: inventory, tokens: tokens, bot: bot, health: health}
}

func (f *StoreFacade) Login(ctx context.Context, username, password string) (*model.Admin, string, error) {
	return f.auth.Authenticate(ctx, username, password)
}

func (f *StoreFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) SubmitOrder(ctx context.Context, sub *model.OrderSubmission) (*model.OrderDetails, error) {
	return f.orders.Submit(ctx, sub)
}

func (f *StoreFacade) Order(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	return f.orders.Get(ctx, orderID)
}

func (f *StoreFacade) Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error) {
	return f.orders.List(ctx, status, limit)
}

func (f *StoreFacade) ConfirmOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	return f.orders.Confirm(ctx, orderID, actor)
}

func (f *StoreFacade) RejectOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	return f.orders.Reject(ctx, orderID, actor)
}

func (f *StoreFacade) RedeliverOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error) {
	return f.orders.Redeliver(ctx, orderID, actor)
}

func (f *StoreFacade) AuditTrail(ctx context.Context, orderID int64) ([]model.AuditEntry, error) {
	return f.orders.AuditTrail(ctx, orderID)
}

func (f *StoreFacade) Receipt(ctx context.Context, orderID int64) (string, error) {
	return f.orders.Receipt(ctx, orderID)
}

func (f *StoreFacade) Tokens(ctx context.Context, limit int) ([]model.TokenListing, error) {
	return f.orders.ListTokens(ctx, limit)
}

func (f *StoreFacade) ImportKeys(ctx context.Context, productID int64, raw string) (int, error) {
	return f.inventory.ImportKeys(ctx, productID, raw)
}

func (f *StoreFacade) DeleteKey(ctx context.Context, keyID int64) error {
	return f.inventory.DeleteKey(ctx, keyID)
}

func (f *StoreFacade) Download(ctx context.Context, token string) (*model.Download, error) {
	return f.tokens.Redeem(ctx, token)
}

func (f *StoreFacade) SweepTokens(ctx context.Context) (int64, error) {
	return f.tokens.Sweep(ctx)
}

func (f *StoreFacade) HandleBotUpdate(ctx context.Context, update model.BotUpdate) error {
	return f.bot.HandleUpdate(ctx, update)
}

func (f *StoreFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
