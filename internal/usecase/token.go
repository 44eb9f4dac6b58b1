package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/domain/repository"
	"github.com/polkiloo/digistore/internal/metrics"
)

// TokenIssuer mints and redeems download tokens.
type TokenIssuer struct {
	store        repository.Store
	files        FileStore
	ttl          time.Duration
	maxDownloads int
	retention    time.Duration
	now          func() time.Time
	newToken     func() string
	logger       *slog.Logger
	metrics      *metrics.Store
}

// NewTokenIssuer constructs TokenIssuer.
func NewTokenIssuer(store repository.Store, files FileStore, cfg *config.Config, logger *slog.Logger, m *metrics.Store) *TokenIssuer {
	return &TokenIssuer{
		store:        store,
		files:        files,
		ttl:          cfg.DownloadTTL,
		maxDownloads: cfg.MaxDownloads,
		retention:    cfg.TokenRetention,
		now:          time.Now,
		newToken:     uuid.NewString,
		logger:       logger,
		metrics:      m,
	}
}

// Issue stores a fresh token for the order's file. Expired tokens are swept
// first on a best-effort basis.
func (i *TokenIssuer) Issue(ctx context.Context, orderID, productID int64, filePath string) (*model.DownloadToken, error) {
	if _, err := i.Sweep(ctx); err != nil {
		i.logger.Warn("token sweep failed", slog.String("error", err.Error()))
	}

	now := i.now()
	token := &model.DownloadToken{
		Token:        i.newToken(),
		OrderID:      orderID,
		ProductID:    productID,
		FilePath:     filePath,
		CreatedAt:    now,
		ExpiresAt:    now.Add(i.ttl),
		MaxDownloads: i.maxDownloads,
	}
	if err := i.store.Tokens().Create(ctx, token); err != nil {
		return nil, err
	}

	i.logger.Info("download token issued",
		slog.Int64("order_id", orderID),
		slog.Int64("product_id", productID),
		slog.Time("expires_at", token.ExpiresAt),
	)
	return token, nil
}

// Redeem checks the token and records one download. Failed checks never
// mutate the token.
func (i *TokenIssuer) Redeem(ctx context.Context, tokenValue string) (*model.Download, error) {
	if tokenValue == "" {
		i.metrics.Download("invalid")
		return nil, domainErrors.ErrInvalidToken
	}

	var download *model.Download
	err := i.store.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		token, err := repos.Tokens().GetForUpdate(ctx, tokenValue)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrInvalidToken
		}
		if err != nil {
			return err
		}

		now := i.now()
		switch {
		case token.ExpiredAt(now):
			return domainErrors.ErrTokenExpired
		case token.Exhausted():
			return domainErrors.ErrDownloadLimitReached
		case token.FilePath == "" || !i.files.Exists(token.FilePath):
			return domainErrors.ErrFileUnavailable
		}

		count, err := repos.Tokens().RecordDownload(ctx, token.ID, now)
		if err != nil {
			return err
		}
		download = &model.Download{
			Path:          token.FilePath,
			Name:          downloadName(token.ProductName, token.FilePath),
			DownloadCount: count,
			MaxDownloads:  token.MaxDownloads,
		}
		return nil
	})

	i.metrics.Download(redeemResult(err))
	if err != nil {
		return nil, err
	}

	i.logger.Info("download redeemed",
		slog.String("file", download.Name),
		slog.Int("download_count", download.DownloadCount),
	)
	return download, nil
}

// Sweep deletes tokens that expired more than the retention window ago.
// Until then a redeem attempt still reports the link as expired.
func (i *TokenIssuer) Sweep(ctx context.Context) (int64, error) {
	n, err := i.store.Tokens().DeleteExpired(ctx, i.now().Add(-i.retention))
	if err != nil {
		return 0, err
	}
	i.metrics.Swept(n)
	if n > 0 {
		i.logger.Info("expired download tokens swept", slog.Int64("count", n))
	}
	return n, nil
}

func downloadName(product, path string) string {
	base := filepath.Base(path)
	if product == "" {
		return base
	}
	return product + "_" + base
}

func redeemResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domainErrors.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domainErrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domainErrors.ErrDownloadLimitReached):
		return "limit_reached"
	case errors.Is(err, domainErrors.ErrFileUnavailable):
		return "file_unavailable"
	default:
		return "error"
	}
}
