package repository

import (
	"context"
	"time"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	Get(ctx context.Context, id int64) (*model.OrderDetails, error)
	// GetForUpdate loads the order and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.OrderDetails, error)
	MarkConfirmed(ctx context.Context, id int64, at time.Time) error
	MarkRejected(ctx context.Context, id int64) error
	SetReceiptPath(ctx context.Context, id int64, path string) error
	// List returns newest orders first. An empty status lists every order.
	List(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error)
}
