package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Filter narrows history listings. Bounds are inclusive.
type Filter struct {
	ProductID *int64
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]Entry, error)
	List(ctx context.Context, db *gorm.DB, filter Filter, limit, offset int) ([]EntryWithProduct, error)
	Count(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
	DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) error
	CountSince(ctx context.Context, db *gorm.DB, cutoff time.Time, category string) (int64, error)
}
