package model

import "time"

// DownloadToken grants bounded access to a product file.
type DownloadToken struct {
	ID            int64
	Token         string
	OrderID       int64
	ProductID     int64
	ProductName   string
	FilePath      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	UsedAt        *time.Time
	DownloadCount int
	MaxDownloads  int
}

// Exhausted reports whether every allowed download has been used.
func (t DownloadToken) Exhausted() bool {
	return t.DownloadCount >= t.MaxDownloads
}

// ExpiredAt reports whether the token is past its expiry at now.
func (t DownloadToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Download is a successfully redeemed token ready to be streamed.
type Download struct {
	Path          string
	Name          string
	DownloadCount int
	MaxDownloads  int
}

// TokenListing is a token row enriched for the admin dashboard.
type TokenListing struct {
	DownloadToken
	BuyerName string
}
