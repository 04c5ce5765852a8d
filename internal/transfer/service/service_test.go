package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	historyrepo "github.com/smallbiznis/stockyard/internal/history/repository"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	productrepo "github.com/smallbiznis/stockyard/internal/product/repository"
	productservice "github.com/smallbiznis/stockyard/internal/product/service"
	"github.com/smallbiznis/stockyard/internal/transfer/domain"
	"github.com/smallbiznis/stockyard/internal/transfer/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	products productdomain.Service
	transfer domain.Service
}

func newTestEnv(t *testing.T, policy config.InventoryPolicy) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&productdomain.Product{}, &historydomain.Entry{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	holder := config.StaticInventoryPolicyHolder(policy)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	productSvc := productservice.New(productservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        productrepo.Provide(),
		HistoryRepo: historyrepo.Provide(),
		Policy:      holder,
		Clock:       fake,
	})
	transferSvc := service.New(service.Params{
		DB:          conn,
		Log:         log,
		ProductSvc:  productSvc,
		ProductRepo: productrepo.Provide(),
		Policy:      holder,
	})

	return &testEnv{db: conn, products: productSvc, transfer: transferSvc}
}

func intPtr(n int) *int { return &n }

func TestImportAddsRowsWithImportReason(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultInventoryPolicy())

	input := strings.Join([]string{
		"name,category,stock,unit",
		"Pen,Stationery,5,pcs",
		"Monitor,Electronics,12,pcs",
	}, "\n")

	result, err := env.transfer.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Added)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)

	items, _, err := env.products.List(ctx, productdomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	var entries []historydomain.Entry
	require.NoError(t, env.db.Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, historydomain.ReasonImport, entry.Reason)
	}
}

func TestImportZeroStockRowSkipsHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultInventoryPolicy())

	input := "name,stock\nGhost,0\n"
	result, err := env.transfer.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	var count int64
	require.NoError(t, env.db.Model(&historydomain.Entry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportSkipsBadRowsAndReportsThem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultInventoryPolicy())

	_, err := env.products.Create(ctx, productdomain.CreateRequest{Name: "Pen"})
	require.NoError(t, err)

	input := strings.Join([]string{
		"name,stock",
		"Pen,5",
		",3",
		"Eraser,-2",
		"Ruler,7",
	}, "\n")

	result, err := env.transfer.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, 1, result.Errors[0].Row)
	assert.Equal(t, "duplicate product name", result.Errors[0].Message)
	assert.Equal(t, 2, result.Errors[1].Row)
	assert.Equal(t, 3, result.Errors[2].Row)
}

func TestImportHeaderErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultInventoryPolicy())

	_, err := env.transfer.Import(ctx, strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrMalformedCSV)

	_, err = env.transfer.Import(ctx, strings.NewReader("title,stock\nPen,3\n"))
	assert.ErrorIs(t, err, domain.ErrMissingNameColumn)
}

func TestImportRowCap(t *testing.T) {
	ctx := context.Background()
	policy := config.DefaultInventoryPolicy()
	policy.ImportMaxRows = 2
	env := newTestEnv(t, policy)

	input := "name\nA\nB\nC\n"
	_, err := env.transfer.Import(ctx, strings.NewReader(input))
	assert.ErrorIs(t, err, domain.ErrTooManyRows)
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, config.DefaultInventoryPolicy())

	unit := "pcs"
	_, err := env.products.Create(ctx, productdomain.CreateRequest{
		Name:  "Pen",
		Unit:  &unit,
		Stock: intPtr(5),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.transfer.Export(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, []string{
		"id", "name", "unit", "category", "brand",
		"stock", "status", "image", "created_at", "updated_at",
	}, header)

	row := records[1]
	assert.NotEmpty(t, row[0])
	assert.Equal(t, "Pen", row[1])
	assert.Equal(t, "pcs", row[2])
	assert.Equal(t, "5", row[5])
	assert.Equal(t, "active", row[6])

	_, err = time.Parse(time.RFC3339, row[8])
	assert.NoError(t, err)
}
