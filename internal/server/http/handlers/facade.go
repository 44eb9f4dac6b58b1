package handlers

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// AuthFacade describes admin authentication capabilities required by handlers.
type AuthFacade interface {
	Login(ctx context.Context, username, password string) (*model.Admin, string, error)
	ParseToken(token string) (string, error)
}

// OrderFacade covers the public checkout and status lookup.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, sub *model.OrderSubmission) (*model.OrderDetails, error)
	Order(ctx context.Context, orderID int64) (*model.OrderDetails, error)
}

// AdminFacade is the dashboard surface of the order state machine.
type AdminFacade interface {
	Order(ctx context.Context, orderID int64) (*model.OrderDetails, error)
	Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error)
	ConfirmOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	RejectOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	RedeliverOrder(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)
	AuditTrail(ctx context.Context, orderID int64) ([]model.AuditEntry, error)
	Receipt(ctx context.Context, orderID int64) (string, error)
}

// InventoryFacade manages key stock and issued download links.
type InventoryFacade interface {
	ImportKeys(ctx context.Context, productID int64, raw string) (int, error)
	DeleteKey(ctx context.Context, keyID int64) error
	Tokens(ctx context.Context, limit int) ([]model.TokenListing, error)
}

// DownloadFacade redeems download tokens.
type DownloadFacade interface {
	Download(ctx context.Context, token string) (*model.Download, error)
}

// BotFacade processes chat platform updates.
type BotFacade interface {
	HandleBotUpdate(ctx context.Context, update model.BotUpdate) error
}

// HealthFacade reports service readiness.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	OrderFacade
	AdminFacade
	InventoryFacade
	DownloadFacade
	BotFacade
	HealthFacade
}
