package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	obsmetrics "github.com/smallbiznis/stockyard/internal/observability/metrics"
	"github.com/smallbiznis/stockyard/internal/product/domain"
	"github.com/smallbiznis/stockyard/pkg/db"
	"github.com/smallbiznis/stockyard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	HistoryRepo historydomain.Repository
	Policy      *config.InventoryPolicyHolder
	Clock       clock.Clock
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	history historydomain.Repository
	policy  *config.InventoryPolicyHolder
	clock   clock.Clock
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("product.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		history: p.HistoryRepo,
		policy:  p.Policy,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}

	unit, err := optionalField(req.Unit, domain.MaxUnitLen, domain.ErrInvalidUnit)
	if err != nil {
		return nil, err
	}
	category, err := optionalField(req.Category, domain.MaxCategoryLen, domain.ErrInvalidCategory)
	if err != nil {
		return nil, err
	}
	brand, err := optionalField(req.Brand, domain.MaxBrandLen, domain.ErrInvalidBrand)
	if err != nil {
		return nil, err
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	if stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	status := domain.StatusActive
	if req.Status != nil {
		parsed, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		status = parsed
	}

	image, err := validateImage(req.Image)
	if err != nil {
		return nil, err
	}

	reason := req.HistoryReason
	if reason == "" {
		reason = historydomain.ReasonInitialStock
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Unit:      unit,
		Category:  category,
		Brand:     brand,
		Stock:     stock,
		Status:    status,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateName
		}

		if err := s.repo.Create(ctx, tx, p); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateName
			}
			return err
		}

		if req.SkipEmptyHistory && stock == 0 {
			return nil
		}
		return s.history.Create(ctx, tx, &historydomain.Entry{
			ID:           s.genID.Generate().Int64(),
			ProductID:    p.ID,
			OldQuantity:  0,
			NewQuantity:  stock,
			ChangeAmount: stock,
			ChangeDate:   now,
			Reason:       reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "create")
	if stock != 0 || !req.SkipEmptyHistory {
		s.metrics.RecordStockAdjustment(ctx, reason, stock)
	}
	s.log.Info("product created",
		zap.String("product_id", snowflake.ID(p.ID).String()),
		zap.Int("stock", stock),
	)

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var (
		updated     *domain.Product
		stockChange *int
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.Name != nil {
			name, err := validateName(*req.Name)
			if err != nil {
				return err
			}
			if name != item.Name {
				other, err := s.repo.FindByName(ctx, tx, name)
				if err != nil {
					return err
				}
				if other != nil && other.ID != item.ID {
					return domain.ErrDuplicateName
				}
			}
			item.Name = name
		}
		if req.Unit != nil {
			unit, err := optionalField(req.Unit, domain.MaxUnitLen, domain.ErrInvalidUnit)
			if err != nil {
				return err
			}
			item.Unit = unit
		}
		if req.Category != nil {
			category, err := optionalField(req.Category, domain.MaxCategoryLen, domain.ErrInvalidCategory)
			if err != nil {
				return err
			}
			item.Category = category
		}
		if req.Brand != nil {
			brand, err := optionalField(req.Brand, domain.MaxBrandLen, domain.ErrInvalidBrand)
			if err != nil {
				return err
			}
			item.Brand = brand
		}
		if req.Status != nil {
			status, ok := domain.ParseStatus(*req.Status)
			if !ok {
				return domain.ErrInvalidStatus
			}
			item.Status = status
		}
		if req.Image != nil {
			image, err := validateImage(req.Image)
			if err != nil {
				return err
			}
			item.Image = image
		}

		now := s.clock.Now()
		if req.Stock != nil && *req.Stock != item.Stock {
			if *req.Stock < 0 {
				return domain.ErrInvalidStock
			}
			change := *req.Stock - item.Stock
			stockChange = &change
			if err := s.history.Create(ctx, tx, &historydomain.Entry{
				ID:           s.genID.Generate().Int64(),
				ProductID:    item.ID,
				OldQuantity:  item.Stock,
				NewQuantity:  *req.Stock,
				ChangeAmount: change,
				ChangeDate:   now,
				Reason:       historydomain.ReasonManualUpdate,
			}); err != nil {
				return err
			}
			item.Stock = *req.Stock
		}

		item.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, item); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateName
			}
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "update")
	if stockChange != nil {
		s.metrics.RecordStockAdjustment(ctx, historydomain.ReasonManualUpdate, *stockChange)
	}

	resp := s.toResponse(updated)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		// History first: the relation carries no cascading delete.
		if err := s.history.DeleteByProduct(ctx, tx, productID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, productID)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordProductWrite(ctx, "delete")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, pagination.PageInfo, error) {
	filter := domain.Filter{
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		LowStockThreshold: s.policy.Current().LowStockThreshold,
	}
	if raw := strings.TrimSpace(req.StockBucket); raw != "" {
		bucket, ok := domain.ParseStockBucket(raw)
		if !ok {
			return nil, pagination.PageInfo{}, domain.ErrInvalidStockBucket
		}
		filter.Bucket = bucket
	}

	sort := domain.Sort{
		Field: strings.TrimSpace(req.SortBy),
		Order: strings.TrimSpace(req.OrderBy),
	}
	page := req.Page.Normalize()

	items, err := s.repo.List(ctx, s.db, filter, sort, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.DistinctCategories(ctx, s.db)
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		Name:        p.Name,
		Unit:        p.Unit,
		Category:    p.Category,
		Brand:       p.Brand,
		Stock:       p.Stock,
		Status:      p.Status,
		StockBucket: domain.BucketFor(p.Stock, s.policy.Current().LowStockThreshold),
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len(name) > domain.MaxNameLen {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

func optionalField(value *string, maxLen int, invalid error) (string, error) {
	if value == nil {
		return "", nil
	}
	trimmed := strings.TrimSpace(*value)
	if len(trimmed) > maxLen {
		return "", invalid
	}
	return trimmed, nil
}

func validateImage(value *string) (string, error) {
	if value == nil {
		return "", nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return "", nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", domain.ErrInvalidImage
	}
	return trimmed, nil
}
