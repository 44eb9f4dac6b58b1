package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

type keyRepository struct {
	q querier
}

const keyColumns = `id, product_id, key_value, is_used, used_by_order_id, created_at, used_at`

func scanKey(row interface{ Scan(dest ...any) error }) (*model.KeyUnit, error) {
	var k model.KeyUnit
	if err := row.Scan(&k.ID, &k.ProductID, &k.Value, &k.IsUsed, &k.UsedByOrderID, &k.CreatedAt, &k.UsedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &k, nil
}

// ClaimOldest picks the oldest unused key and marks it in one statement.
// SKIP LOCKED lets a concurrent claimer move to the next key instead of waiting.
func (r *keyRepository) ClaimOldest(ctx context.Context, productID, orderID int64) (*model.KeyUnit, error) {
	const query = `UPDATE product_keys
                   SET is_used=TRUE, used_by_order_id=$2, used_at=NOW()
                   WHERE id = (
                       SELECT id FROM product_keys
                       WHERE product_id=$1 AND NOT is_used
                       ORDER BY created_at, id
                       LIMIT 1
                       FOR UPDATE SKIP LOCKED
                   )
                   RETURNING ` + keyColumns
	return scanKey(r.q.QueryRow(ctx, query, productID, orderID))
}

func (r *keyRepository) GetByOrder(ctx context.Context, orderID int64) (*model.KeyUnit, error) {
	query := `SELECT ` + keyColumns + ` FROM product_keys WHERE used_by_order_id=$1`
	return scanKey(r.q.QueryRow(ctx, query, orderID))
}

func (r *keyRepository) Insert(ctx context.Context, productID int64, values []string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	const query = `INSERT INTO product_keys (product_id, key_value)
                   SELECT $1, v FROM unnest($2::text[]) AS v
                   ON CONFLICT (product_id, key_value) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, productID, values)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *keyRepository) DeleteUnused(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM product_keys WHERE id=$1 AND NOT is_used RETURNING product_id`
	var productID int64
	err := r.q.QueryRow(ctx, query, id).Scan(&productID)
	if err == nil {
		return productID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var used bool
	if err := r.q.QueryRow(ctx, `SELECT is_used FROM product_keys WHERE id=$1`, id).Scan(&used); err != nil {
		return 0, mapNotFound(err)
	}
	return 0, domainErrors.ErrKeyInUse
}
