package domain

import (
	"context"

	"gorm.io/gorm"
)

// Filter narrows product queries. The same filter feeds the page query, the
// count query and the summary aggregates so the predicates cannot drift apart.
type Filter struct {
	// Name matches as a case-insensitive substring.
	Name string
	// Category matches exactly.
	Category string
	// Bucket restricts to a derived stock range; empty means all.
	Bucket StockBucket
	// LowStockThreshold is the bucket boundary in effect for this query.
	LowStockThreshold int
}

// Sort names a products column from the allow-list. Unknown fields fall back
// to name ascending.
type Sort struct {
	Field string
	Order string
}

// BucketCounts holds per-bucket product counts.
type BucketCounts struct {
	OutOfStock int64 `gorm:"column:out_of_stock"`
	LowStock   int64 `gorm:"column:low_stock"`
	InStock    int64 `gorm:"column:in_stock"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Product, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Product, error)
	List(ctx context.Context, db *gorm.DB, filter Filter, sort Sort, limit, offset int) ([]Product, error)
	Count(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	DistinctCategories(ctx context.Context, db *gorm.DB) ([]string, error)

	CountByStatus(ctx context.Context, db *gorm.DB, filter Filter) (map[Status]int64, error)
	CountBuckets(ctx context.Context, db *gorm.DB, filter Filter) (BucketCounts, error)
	SumStock(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
}
