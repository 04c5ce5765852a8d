package domain

import (
	"strings"
	"time"
)

// Field length caps enforced at the service layer.
const (
	MaxNameLen     = 255
	MaxUnitLen     = 50
	MaxCategoryLen = 100
	MaxBrandLen    = 100
)

// Status is the stored product lifecycle state. It is independent of the
// derived stock bucket.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
)

// ParseStatus validates a lifecycle status value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, true
	case StatusInactive:
		return StatusInactive, true
	case StatusDiscontinued:
		return StatusDiscontinued, true
	default:
		return "", false
	}
}

// StockBucket is the derived stock category. It is recomputed from the
// numeric stock on every read and never stored.
type StockBucket string

const (
	BucketOutOfStock StockBucket = "out_of_stock"
	BucketLowStock   StockBucket = "low_stock"
	BucketInStock    StockBucket = "in_stock"
)

// ParseStockBucket validates a stock bucket value.
func ParseStockBucket(raw string) (StockBucket, bool) {
	switch StockBucket(strings.ToLower(strings.TrimSpace(raw))) {
	case BucketOutOfStock:
		return BucketOutOfStock, true
	case BucketLowStock:
		return BucketLowStock, true
	case BucketInStock:
		return BucketInStock, true
	default:
		return "", false
	}
}

// BucketFor buckets a non-negative stock level. The partition is exhaustive:
// 0 is out_of_stock, (0, threshold] is low_stock, above is in_stock.
func BucketFor(stock, lowStockThreshold int) StockBucket {
	switch {
	case stock <= 0:
		return BucketOutOfStock
	case stock <= lowStockThreshold:
		return BucketLowStock
	default:
		return BucketInStock
	}
}

type Product struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex:ux_products_name"`
	Unit      string    `json:"unit" gorm:"type:text"`
	Category  string    `json:"category" gorm:"type:text;index:ix_products_category"`
	Brand     string    `json:"brand" gorm:"type:text"`
	Stock     int       `json:"stock" gorm:"not null;default:0;index:ix_products_stock"`
	Status    Status    `json:"status" gorm:"type:text;not null;default:active;index:ix_products_status"`
	Image     string    `json:"image" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
