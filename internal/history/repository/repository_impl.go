package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/stockyard/internal/history/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("change_date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter, limit, offset int) ([]domain.EntryWithProduct, error) {
	var entries []domain.EntryWithProduct
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Entry{}), filter).
		Select("inventory_history.*, products.name AS product_name").
		Joins("JOIN products ON products.id = inventory_history.product_id").
		Order("inventory_history.change_date DESC, inventory_history.id DESC").
		Limit(limit).
		Offset(offset)

	if err := stmt.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Entry{}), filter).
		Joins("JOIN products ON products.id = inventory_history.product_id")
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) error {
	return db.WithContext(ctx).Delete(&domain.Entry{}, "product_id = ?", productID).Error
}

// CountSince counts entries in the recent-activity window. A category filter
// narrows to that category's products; no other summary filter applies here.
func (r *repo) CountSince(ctx context.Context, db *gorm.DB, cutoff time.Time, category string) (int64, error) {
	var total int64
	stmt := db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("change_date >= ?", cutoff)
	if category != "" {
		stmt = stmt.
			Joins("JOIN products ON products.id = inventory_history.product_id").
			Where("products.category = ?", category)
	}
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyFilter(stmt *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.ProductID != nil {
		stmt = stmt.Where("inventory_history.product_id = ?", *filter.ProductID)
	}
	if filter.From != nil {
		stmt = stmt.Where("inventory_history.change_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("inventory_history.change_date <= ?", *filter.To)
	}
	return stmt
}
