package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType tells the inventory ledger how a product is fulfilled.
type ProductType string

const (
	ProductTypeKey    ProductType = "key"
	ProductTypeFile   ProductType = "file"
	ProductTypeBundle ProductType = "bundle"
)

// Product is a sellable digital item.
type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	Type       ProductType
	StockCount int
	// StockLimit caps StockCount when set.
	StockLimit *int
	FilePath   string
	IsVisible  bool
	IsFeatured bool
	CreatedAt  time.Time
}

// Available reports whether new orders may be placed for the product.
func (p Product) Available() bool {
	return p.IsVisible && p.StockCount > 0
}

// KeyUnit is a single license key owned by a key-type product.
type KeyUnit struct {
	ID            int64
	ProductID     int64
	Value         string
	IsUsed        bool
	UsedByOrderID *int64
	CreatedAt     time.Time
	UsedAt        *time.Time
}

// FileStockPolicy decides what a file product does when its counter is exhausted.
type FileStockPolicy string

const (
	// FileStockAllow keeps delivering the stored file and floors the counter at zero.
	FileStockAllow FileStockPolicy = "allow"
	// FileStockStrict reports out of stock once the counter reaches zero.
	FileStockStrict FileStockPolicy = "strict"
)

// Allocation is the inventory outcome of a confirmation.
type Allocation struct {
	ProductType ProductType
	Key         *KeyUnit
	StockAfter  int
}
