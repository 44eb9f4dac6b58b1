package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/domain/repository"
	"github.com/polkiloo/digistore/internal/metrics"
)

// InventoryLedger hands out keys and file stock to confirmed orders.
type InventoryLedger struct {
	store   repository.Store
	policy  model.FileStockPolicy
	logger  *slog.Logger
	metrics *metrics.Store
}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger(store repository.Store, cfg *config.Config, logger *slog.Logger, m *metrics.Store) *InventoryLedger {
	policy := model.FileStockAllow
	if cfg != nil && cfg.FileStockPolicy != "" {
		policy = cfg.FileStockPolicy
	}
	return &InventoryLedger{store: store, policy: policy, logger: logger, metrics: m}
}

// Allocate consumes one unit of product for the order using repos, which must
// be bound to the caller's transaction. ErrOutOfStock leaves the transaction
// usable so the caller can still commit the confirmation.
func (l *InventoryLedger) Allocate(ctx context.Context, repos repository.Factory, product model.Product, orderID int64) (*model.Allocation, error) {
	alloc, err := l.allocate(ctx, repos, product, orderID)

	result := "ok"
	switch {
	case errors.Is(err, domainErrors.ErrOutOfStock):
		result = "out_of_stock"
	case err != nil:
		result = "error"
	}
	l.metrics.Allocation(string(product.Type), result)
	return alloc, err
}

func (l *InventoryLedger) allocate(ctx context.Context, repos repository.Factory, product model.Product, orderID int64) (*model.Allocation, error) {
	switch product.Type {
	case model.ProductTypeKey:
		if _, err := repos.Products().Lock(ctx, product.ID); err != nil {
			return nil, fmt.Errorf("lock product: %w", err)
		}
		key, err := repos.Keys().ClaimOldest(ctx, product.ID, orderID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			if _, err := repos.Products().SyncKeyStock(ctx, product.ID); err != nil {
				return nil, fmt.Errorf("sync key stock: %w", err)
			}
			l.logger.Warn("no unused key left",
				slog.Int64("order_id", orderID),
				slog.Int64("product_id", product.ID),
			)
			return nil, domainErrors.ErrOutOfStock
		}
		if err != nil {
			return nil, fmt.Errorf("claim key: %w", err)
		}
		stock, err := repos.Products().SyncKeyStock(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("sync key stock: %w", err)
		}
		return &model.Allocation{ProductType: product.Type, Key: key, StockAfter: stock}, nil

	case model.ProductTypeFile:
		locked, err := repos.Products().Lock(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("lock product: %w", err)
		}
		if l.policy == model.FileStockStrict && locked.StockCount <= 0 {
			l.logger.Warn("file stock exhausted",
				slog.Int64("order_id", orderID),
				slog.Int64("product_id", product.ID),
			)
			return nil, domainErrors.ErrOutOfStock
		}
		stock, err := repos.Products().DecrementStock(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		return &model.Allocation{ProductType: product.Type, StockAfter: stock}, nil

	default:
		return &model.Allocation{ProductType: product.Type, StockAfter: product.StockCount}, nil
	}
}

// ImportKeys adds one key per line of raw to a key product and returns how
// many were new. Blank lines and duplicates are skipped.
func (l *InventoryLedger) ImportKeys(ctx context.Context, productID int64, raw string) (int, error) {
	values := parseKeys(raw)
	if len(values) == 0 {
		return 0, domainErrors.NewValidationError("keys", "is required")
	}

	var added int
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		product, err := repos.Products().Lock(ctx, productID)
		if err != nil {
			return err
		}
		if product.Type != model.ProductTypeKey {
			return domainErrors.NewValidationError("product_id", "must be a key product")
		}
		if added, err = repos.Keys().Insert(ctx, productID, values); err != nil {
			return err
		}
		_, err = repos.Products().SyncKeyStock(ctx, productID)
		return err
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("keys imported",
		slog.Int64("product_id", productID),
		slog.Int("added", added),
		slog.Int("submitted", len(values)),
	)
	return added, nil
}

// DeleteKey removes an unused key and refreshes its product stock.
func (l *InventoryLedger) DeleteKey(ctx context.Context, keyID int64) error {
	return l.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		productID, err := repos.Keys().DeleteUnused(ctx, keyID)
		if err != nil {
			return err
		}
		_, err = repos.Products().SyncKeyStock(ctx, productID)
		return err
	})
}

func parseKeys(raw string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, line := range strings.Split(raw, "\n") {
		v := strings.TrimSpace(line)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
