package repository

import (
	"context"
	"time"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// TokenRepository describes persistence operations with download tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *model.DownloadToken) error
	// GetForUpdate loads a token by its string and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, token string) (*model.DownloadToken, error)
	RecordDownload(ctx context.Context, id int64, at time.Time) (int, error)
	// DeleteExpired removes tokens whose expiry is at or before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	List(ctx context.Context, limit int) ([]model.TokenListing, error)
}
