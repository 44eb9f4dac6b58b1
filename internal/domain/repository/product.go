package repository

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// ProductRepository describes persistence operations with products.
type ProductRepository interface {
	Get(ctx context.Context, id int64) (*model.Product, error)
	// Lock loads the product and holds a row lock until the transaction ends.
	Lock(ctx context.Context, id int64) (*model.Product, error)
	// DecrementStock lowers stock_count by one without going below zero.
	DecrementStock(ctx context.Context, id int64) (int, error)
	// SyncKeyStock sets stock_count to the number of unused keys.
	SyncKeyStock(ctx context.Context, id int64) (int, error)
}

// KeyRepository describes persistence operations with license keys.
type KeyRepository interface {
	// ClaimOldest marks the oldest unused key of the product as used by the order.
	// It returns ErrNotFound when the product has no unused key left.
	ClaimOldest(ctx context.Context, productID, orderID int64) (*model.KeyUnit, error)
	GetByOrder(ctx context.Context, orderID int64) (*model.KeyUnit, error)
	// Insert stores keys, skipping values the product already owns, and returns how many were added.
	Insert(ctx context.Context, productID int64, values []string) (int, error)
	// DeleteUnused removes an unused key and returns its product id.
	DeleteUnused(ctx context.Context, id int64) (int64, error)
}
