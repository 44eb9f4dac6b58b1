package postgres

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderDetailsSelect = `SELECT o.id, o.product_id, o.buyer_name, o.email, o.phone, o.telegram_username,
                   o.payment_method, o.payment_proof_path, o.transaction_id, o.status, o.created_at,
                   o.confirmed_at, o.receipt_path,
                   p.id, p.name, p.price, p.type, p.stock_count, p.stock_limit, p.file_path,
                   p.is_visible, p.is_featured, p.created_at
                   FROM orders o JOIN products p ON p.id = o.product_id`

func scanOrderDetails(row interface{ Scan(dest ...any) error }) (*model.OrderDetails, error) {
	var d model.OrderDetails
	o, p := &d.Order, &d.Product
	err := row.Scan(
		&o.ID, &o.ProductID, &o.BuyerName, &o.Email, &o.Phone, &o.TelegramUsername,
		&o.PaymentMethod, &o.PaymentProofPath, &o.TransactionID, &o.Status, &o.CreatedAt,
		&o.ConfirmedAt, &o.ReceiptPath,
		&p.ID, &p.Name, &p.Price, &p.Type, &p.StockCount, &p.StockLimit, &p.FilePath,
		&p.IsVisible, &p.IsFeatured, &p.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &d, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (product_id, buyer_name, email, phone, telegram_username,
                       payment_method, payment_proof_path, transaction_id, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING id, created_at`
	created := *order
	created.Status = model.OrderStatusPending
	err := r.q.QueryRow(ctx, query,
		order.ProductID, order.BuyerName, order.Email, order.Phone, order.TelegramUsername,
		order.PaymentMethod, order.PaymentProofPath, order.TransactionID, created.Status,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*model.OrderDetails, error) {
	return scanOrderDetails(r.q.QueryRow(ctx, orderDetailsSelect+` WHERE o.id=$1`, id))
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.OrderDetails, error) {
	return scanOrderDetails(r.q.QueryRow(ctx, orderDetailsSelect+` WHERE o.id=$1 FOR UPDATE OF o`, id))
}

func (r *orderRepository) MarkConfirmed(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE orders SET status=$2, confirmed_at=$3 WHERE id=$1 AND status=$4`
	return r.transition(ctx, query, id, model.OrderStatusConfirmed, at, model.OrderStatusPending)
}

func (r *orderRepository) MarkRejected(ctx context.Context, id int64) error {
	const query = `UPDATE orders SET status=$2 WHERE id=$1 AND status=$3`
	return r.transition(ctx, query, id, model.OrderStatusRejected, model.OrderStatusPending)
}

func (r *orderRepository) transition(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotPending
	}
	return nil
}

func (r *orderRepository) SetReceiptPath(ctx context.Context, id int64, path string) error {
	_, err := r.q.Exec(ctx, `UPDATE orders SET receipt_path=$2 WHERE id=$1`, id, path)
	return err
}

func (r *orderRepository) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.OrderDetails, error) {
	query := orderDetailsSelect + ` WHERE ($1::text = '' OR o.status = $1::text) ORDER BY o.created_at DESC, o.id DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderDetails
	for rows.Next() {
		d, err := scanOrderDetails(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
