package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/stockyard/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// sortColumns is the allow-list for ORDER BY identifiers. Only values from
// this map are ever interpolated into a query.
var sortColumns = map[string]string{
	"name":       "name",
	"category":   "category",
	"brand":      "brand",
	"stock":      "stock",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).First(&p, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	if err := db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter, sort domain.Sort, limit, offset int) ([]domain.Product, error) {
	var items []domain.Product
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Product{}), filter)

	stmt = stmt.Order(orderClause(sort)).Limit(limit).Offset(offset)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Product{}), filter)
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"unit":       product.Unit,
			"category":   product.Category,
			"brand":      product.Brand,
			"stock":      product.Stock,
			"status":     product.Status,
			"image":      product.Image,
			"updated_at": product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *repo) DistinctCategories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var categories []string
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, filter domain.Filter) (map[domain.Status]int64, error) {
	var rows []struct {
		Status domain.Status `gorm:"column:status"`
		Total  int64         `gorm:"column:total"`
	}
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Product{}), filter)
	if err := stmt.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[domain.Status]int64{
		domain.StatusActive:       0,
		domain.StatusInactive:     0,
		domain.StatusDiscontinued: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *repo) CountBuckets(ctx context.Context, db *gorm.DB, filter domain.Filter) (domain.BucketCounts, error) {
	var counts domain.BucketCounts
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Product{}), filter)
	err := stmt.Select(
		"COALESCE(SUM(CASE WHEN stock = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock, "+
			"COALESCE(SUM(CASE WHEN stock > 0 AND stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock, "+
			"COALESCE(SUM(CASE WHEN stock > ? THEN 1 ELSE 0 END), 0) AS in_stock",
		filter.LowStockThreshold, filter.LowStockThreshold,
	).Scan(&counts).Error
	if err != nil {
		return domain.BucketCounts{}, err
	}
	return counts, nil
}

func (r *repo) SumStock(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Product{}), filter)
	if err := stmt.Select("COALESCE(SUM(stock), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// applyFilter is the single place the product predicate is built; the page,
// count and aggregate queries all go through it.
func applyFilter(stmt *gorm.DB, filter domain.Filter) *gorm.DB {
	if name := strings.TrimSpace(filter.Name); name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	switch filter.Bucket {
	case domain.BucketOutOfStock:
		stmt = stmt.Where("stock = 0")
	case domain.BucketLowStock:
		stmt = stmt.Where("stock > 0 AND stock <= ?", filter.LowStockThreshold)
	case domain.BucketInStock:
		stmt = stmt.Where("stock > ?", filter.LowStockThreshold)
	}
	return stmt
}

func orderClause(sort domain.Sort) string {
	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(sort.Field))]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(sort.Order), "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}
