package postgres

import (
	"context"

	"github.com/polkiloo/digistore/internal/domain/model"
)

type productRepository struct {
	q querier
}

const productColumns = `id, name, price, type, stock_count, stock_limit, file_path, is_visible, is_featured, created_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.StockCount, &p.StockLimit, &p.FilePath, &p.IsVisible, &p.IsFeatured, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(r.q.QueryRow(ctx, query, id))
}

func (r *productRepository) Lock(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1 FOR UPDATE`
	return scanProduct(r.q.QueryRow(ctx, query, id))
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64) (int, error) {
	const query = `UPDATE products SET stock_count = GREATEST(stock_count - 1, 0) WHERE id=$1 RETURNING stock_count`
	var stock int
	if err := r.q.QueryRow(ctx, query, id).Scan(&stock); err != nil {
		return 0, mapNotFound(err)
	}
	return stock, nil
}

func (r *productRepository) SyncKeyStock(ctx context.Context, id int64) (int, error) {
	const query = `UPDATE products
                   SET stock_count = (SELECT COUNT(*) FROM product_keys WHERE product_id=$1 AND NOT is_used)
                   WHERE id=$1
                   RETURNING stock_count`
	var stock int
	if err := r.q.QueryRow(ctx, query, id).Scan(&stock); err != nil {
		return 0, mapNotFound(err)
	}
	return stock, nil
}
