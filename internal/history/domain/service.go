package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockyard/pkg/db/pagination"
)

type Service interface {
	ProductHistory(ctx context.Context, productID string) (*ProductHistoryResponse, error)
	List(ctx context.Context, req ListRequest) ([]EntryResponse, pagination.PageInfo, error)
	Summary(ctx context.Context, req SummaryRequest) (*SummaryResponse, error)
}

type ListRequest struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Page      pagination.Request
}

type SummaryRequest struct {
	Category    string
	StockBucket string
}

type EntryResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	OldQuantity  int       `json:"old_quantity"`
	NewQuantity  int       `json:"new_quantity"`
	ChangeAmount int       `json:"change_amount"`
	ChangeDate   time.Time `json:"change_date"`
	UserInfo     string    `json:"user_info,omitempty"`
	Reason       string    `json:"reason"`
}

// ProductSummary is the slim product header returned with its history.
type ProductSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
	StockBucket string `json:"stock_bucket"`
}

type ProductHistoryResponse struct {
	Product ProductSummary  `json:"product"`
	History []EntryResponse `json:"history"`
}

// SummaryResponse aggregates the filtered product set.
// TotalInventoryValue sums stock units; the field name is kept for
// compatibility with existing dashboard clients even though no currency is
// involved.
type SummaryResponse struct {
	TotalProducts       int64            `json:"totalProducts"`
	StatusDistribution  map[string]int64 `json:"statusDistribution"`
	StockLevels         map[string]int64 `json:"stockLevels"`
	RecentActivity      int64            `json:"recentActivity"`
	TotalInventoryValue int64            `json:"totalInventoryValue"`
}

var (
	ErrProductNotFound    = errors.New("product_not_found")
	ErrInvalidProductID   = errors.New("invalid_product_id")
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrInvalidStockBucket = errors.New("invalid_stock_bucket")
)
