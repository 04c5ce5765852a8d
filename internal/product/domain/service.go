package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockyard/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, pagination.PageInfo, error)
	Categories(ctx context.Context) ([]string, error)
}

// CreateRequest carries a new product. HistoryReason and SkipEmptyHistory are
// set by internal callers only (bulk import); handlers leave them zero.
type CreateRequest struct {
	Name     string
	Unit     *string
	Category *string
	Brand    *string
	Stock    *int
	Status   *string
	Image    *string

	HistoryReason    string
	SkipEmptyHistory bool
}

// UpdateRequest merges supplied fields into a stored product. Pointer fields
// distinguish "absent" from a genuine zero value.
type UpdateRequest struct {
	ID       string
	Name     *string
	Unit     *string
	Category *string
	Brand    *string
	Stock    *int
	Status   *string
	Image    *string
}

type ListRequest struct {
	Name        string
	Category    string
	StockBucket string
	SortBy      string
	OrderBy     string
	Page        pagination.Request
}

type Response struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit,omitempty"`
	Category    string      `json:"category,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Stock       int         `json:"stock"`
	Status      Status      `json:"status"`
	StockBucket StockBucket `json:"stock_bucket"`
	Image       string      `json:"image,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrDuplicateName      = errors.New("duplicate_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidBrand       = errors.New("invalid_brand")
	ErrInvalidStock       = errors.New("invalid_stock")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidImage       = errors.New("invalid_image")
	ErrInvalidStockBucket = errors.New("invalid_stock_bucket")
)
