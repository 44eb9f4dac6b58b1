package postgres

import (
	"context"
	"time"

	"github.com/polkiloo/digistore/internal/domain/model"
)

type tokenRepository struct {
	q querier
}

func (r *tokenRepository) Create(ctx context.Context, token *model.DownloadToken) error {
	const query = `INSERT INTO download_tokens (token, order_id, product_id, file_path, created_at, expires_at, max_downloads)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id`
	return r.q.QueryRow(ctx, query,
		token.Token, token.OrderID, token.ProductID, token.FilePath, token.CreatedAt, token.ExpiresAt, token.MaxDownloads,
	).Scan(&token.ID)
}

func (r *tokenRepository) GetForUpdate(ctx context.Context, token string) (*model.DownloadToken, error) {
	const query = `SELECT t.id, t.token, t.order_id, t.product_id, p.name, t.file_path, t.created_at,
                          t.expires_at, t.used_at, t.download_count, t.max_downloads
                   FROM download_tokens t JOIN products p ON p.id = t.product_id
                   WHERE t.token=$1
                   FOR UPDATE OF t`
	var t model.DownloadToken
	err := r.q.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.Token, &t.OrderID, &t.ProductID, &t.ProductName, &t.FilePath, &t.CreatedAt,
		&t.ExpiresAt, &t.UsedAt, &t.DownloadCount, &t.MaxDownloads,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (r *tokenRepository) RecordDownload(ctx context.Context, id int64, at time.Time) (int, error) {
	const query = `UPDATE download_tokens
                   SET download_count = download_count + 1, used_at=$2, is_used=TRUE
                   WHERE id=$1
                   RETURNING download_count`
	var count int
	if err := r.q.QueryRow(ctx, query, id, at).Scan(&count); err != nil {
		return 0, mapNotFound(err)
	}
	return count, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM download_tokens WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *tokenRepository) List(ctx context.Context, limit int) ([]model.TokenListing, error) {
	const query = `SELECT t.id, t.token, t.order_id, t.product_id, p.name, t.file_path, t.created_at,
                          t.expires_at, t.used_at, t.download_count, t.max_downloads, o.buyer_name
                   FROM download_tokens t
                   JOIN products p ON p.id = t.product_id
                   JOIN orders o ON o.id = t.order_id
                   ORDER BY t.created_at DESC, t.id DESC
                   LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TokenListing
	for rows.Next() {
		var l model.TokenListing
		if err := rows.Scan(
			&l.ID, &l.Token, &l.OrderID, &l.ProductID, &l.ProductName, &l.FilePath, &l.CreatedAt,
			&l.ExpiresAt, &l.UsedAt, &l.DownloadCount, &l.MaxDownloads, &l.BuyerName,
		); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
