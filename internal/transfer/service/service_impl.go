package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockyard/internal/config"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	obsmetrics "github.com/smallbiznis/stockyard/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	"github.com/smallbiznis/stockyard/internal/transfer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// exportColumns fixes the CSV export column order.
var exportColumns = []string{
	"id", "name", "unit", "category", "brand",
	"stock", "status", "image", "created_at", "updated_at",
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	ProductSvc  productdomain.Service
	ProductRepo productdomain.Repository
	Policy      *config.InventoryPolicyHolder
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	products    productdomain.Service
	productRepo productdomain.Repository
	policy      *config.InventoryPolicyHolder
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("transfer.service"),
		products:    p.ProductSvc,
		productRepo: p.ProductRepo,
		policy:      p.Policy,
		metrics:     p.Metrics,
	}
}

func (s *Service) Import(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.ErrMalformedCSV
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, domain.ErrMissingNameColumn
	}

	maxRows := s.policy.Current().ImportMaxRows
	result := &domain.ImportResult{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrMalformedCSV
		}

		result.Processed++
		if result.Processed > maxRows {
			return nil, domain.ErrTooManyRows
		}
		// Row numbers in errors are 1-based data rows, header excluded.
		row := result.Processed

		req, rowErr := buildCreateRequest(columns, record)
		if rowErr != "" {
			s.skipRow(ctx, result, row, rowErr)
			continue
		}

		if _, err := s.products.Create(ctx, *req); err != nil {
			if message, ok := rowFailure(err); ok {
				s.skipRow(ctx, result, row, message)
				continue
			}
			return nil, err
		}

		result.Added++
		s.metrics.RecordImportRow(ctx, "added")
		if req.Stock != nil && *req.Stock > 0 {
			s.metrics.RecordStockAdjustment(ctx, historydomain.ReasonImport, *req.Stock)
		}
	}

	s.log.Info("csv import finished",
		zap.Int("processed", result.Processed),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) Export(ctx context.Context, w io.Writer) error {
	items, err := s.productRepo.FindAll(ctx, s.db)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return err
	}
	for i := range items {
		p := &items[i]
		record := []string{
			snowflake.ID(p.ID).String(),
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			string(p.Status),
			p.Image,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *Service) skipRow(ctx context.Context, result *domain.ImportResult, row int, message string) {
	result.Skipped++
	result.Errors = append(result.Errors, domain.RowError{Row: row, Message: message})
	s.metrics.RecordImportRow(ctx, "skipped")
}

func buildCreateRequest(columns map[string]int, record []string) (*productdomain.CreateRequest, string) {
	name := field(columns, record, "name")
	if name == "" {
		return nil, "name is required"
	}

	req := &productdomain.CreateRequest{
		Name:             name,
		HistoryReason:    historydomain.ReasonImport,
		SkipEmptyHistory: true,
	}

	if value := field(columns, record, "unit"); value != "" {
		req.Unit = &value
	}
	if value := field(columns, record, "category"); value != "" {
		req.Category = &value
	}
	if value := field(columns, record, "brand"); value != "" {
		req.Brand = &value
	}
	if value := field(columns, record, "status"); value != "" {
		req.Status = &value
	}
	if value := field(columns, record, "image"); value != "" {
		req.Image = &value
	}

	if value := field(columns, record, "stock"); value != "" {
		stock, err := strconv.Atoi(value)
		if err != nil || stock < 0 {
			return nil, "stock must be a non-negative integer"
		}
		req.Stock = &stock
	}

	return req, ""
}

// rowFailure maps creation errors that invalidate a single row; anything
// else aborts the import.
func rowFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, productdomain.ErrDuplicateName):
		return "duplicate product name", true
	case errors.Is(err, productdomain.ErrInvalidName):
		return "invalid name", true
	case errors.Is(err, productdomain.ErrInvalidUnit):
		return "invalid unit", true
	case errors.Is(err, productdomain.ErrInvalidCategory):
		return "invalid category", true
	case errors.Is(err, productdomain.ErrInvalidBrand):
		return "invalid brand", true
	case errors.Is(err, productdomain.ErrInvalidStock):
		return "stock must be a non-negative integer", true
	case errors.Is(err, productdomain.ErrInvalidStatus):
		return "invalid status", true
	case errors.Is(err, productdomain.ErrInvalidImage):
		return "invalid image URL", true
	default:
		return "", false
	}
}

func field(columns map[string]int, record []string, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
