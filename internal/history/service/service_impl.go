package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	"github.com/smallbiznis/stockyard/internal/history/domain"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	"github.com/smallbiznis/stockyard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Policy      *config.InventoryPolicyHolder
	Clock       clock.Clock
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	productRepo productdomain.Repository
	policy      *config.InventoryPolicyHolder
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("history.service"),
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		policy:      p.Policy,
		clock:       p.Clock,
	}
}

func (s *Service) ProductHistory(ctx context.Context, productID string) (*domain.ProductHistoryResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidProductID
	}

	product, err := s.productRepo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	entries, err := s.repo.FindByProduct(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}

	threshold := s.policy.Current().LowStockThreshold
	history := make([]domain.EntryResponse, 0, len(entries))
	for i := range entries {
		history = append(history, toEntryResponse(&entries[i], ""))
	}

	return &domain.ProductHistoryResponse{
		Product: domain.ProductSummary{
			ID:          snowflake.ID(product.ID).String(),
			Name:        product.Name,
			Category:    product.Category,
			Stock:       product.Stock,
			Status:      string(product.Status),
			StockBucket: string(productdomain.BucketFor(product.Stock, threshold)),
		},
		History: history,
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.EntryResponse, pagination.PageInfo, error) {
	filter := domain.Filter{
		From: req.From,
		To:   req.To,
	}
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return nil, pagination.PageInfo{}, domain.ErrInvalidProductID
		}
		productID := id.Int64()
		filter.ProductID = &productID
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, pagination.PageInfo{}, domain.ErrInvalidDateRange
	}

	page := req.Page.Normalize()

	entries, err := s.repo.List(ctx, s.db, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	resp := make([]domain.EntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, toEntryResponse(&entries[i].Entry, entries[i].ProductName))
	}
	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryResponse, error) {
	policy := s.policy.Current()

	filter := productdomain.Filter{
		Category:          strings.TrimSpace(req.Category),
		LowStockThreshold: policy.LowStockThreshold,
	}
	if raw := strings.TrimSpace(req.StockBucket); raw != "" {
		bucket, ok := productdomain.ParseStockBucket(raw)
		if !ok {
			return nil, domain.ErrInvalidStockBucket
		}
		filter.Bucket = bucket
	}

	total, err := s.productRepo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.productRepo.CountByStatus(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	statusDistribution := make(map[string]int64, len(statusCounts))
	for status, count := range statusCounts {
		statusDistribution[string(status)] = count
	}

	buckets, err := s.productRepo.CountBuckets(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	// The stock-bucket filter deliberately does not narrow recent activity;
	// only the category filter does.
	cutoff := s.clock.Now().AddDate(0, 0, -policy.RecentActivityDays)
	recent, err := s.repo.CountSince(ctx, s.db, cutoff, filter.Category)
	if err != nil {
		return nil, err
	}

	value, err := s.productRepo.SumStock(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return &domain.SummaryResponse{
		TotalProducts:      total,
		StatusDistribution: statusDistribution,
		StockLevels: map[string]int64{
			string(productdomain.BucketOutOfStock): buckets.OutOfStock,
			string(productdomain.BucketLowStock):   buckets.LowStock,
			string(productdomain.BucketInStock):    buckets.InStock,
		},
		RecentActivity:      recent,
		TotalInventoryValue: value,
	}, nil
}

func toEntryResponse(entry *domain.Entry, productName string) domain.EntryResponse {
	return domain.EntryResponse{
		ID:           snowflake.ID(entry.ID).String(),
		ProductID:    snowflake.ID(entry.ProductID).String(),
		ProductName:  productName,
		OldQuantity:  entry.OldQuantity,
		NewQuantity:  entry.NewQuantity,
		ChangeAmount: entry.ChangeAmount,
		ChangeDate:   entry.ChangeDate,
		UserInfo:     entry.UserInfo,
		Reason:       entry.Reason,
	}
}
