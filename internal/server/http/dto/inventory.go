package dto

import "time"

// ImportKeysResponse reports how many keys were stored.
type ImportKeysResponse struct {
	Added int `json:"added"`
}

// TokenResponse describes an issued download link.
type TokenResponse struct {
	Token         string     `json:"token"`
	OrderID       int64      `json:"order_id"`
	BuyerName     string     `json:"buyer_name"`
	ProductName   string     `json:"product_name"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	DownloadCount int        `json:"download_count"`
	MaxDownloads  int        `json:"max_downloads"`
	Exhausted     bool       `json:"exhausted"`
}
