package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	"github.com/smallbiznis/stockyard/internal/history/domain"
	historyrepo "github.com/smallbiznis/stockyard/internal/history/repository"
	"github.com/smallbiznis/stockyard/internal/history/service"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	productrepo "github.com/smallbiznis/stockyard/internal/product/repository"
	productservice "github.com/smallbiznis/stockyard/internal/product/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	products productdomain.Service
	history  domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&productdomain.Product{}, &domain.Entry{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	policy := config.StaticInventoryPolicyHolder(config.DefaultInventoryPolicy())
	log := zap.NewNop()

	productSvc := productservice.New(productservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        productrepo.Provide(),
		HistoryRepo: historyrepo.Provide(),
		Policy:      policy,
		Clock:       fake,
	})
	historySvc := service.New(service.Params{
		DB:          conn,
		Log:         log,
		Repo:        historyrepo.Provide(),
		ProductRepo: productrepo.Provide(),
		Policy:      policy,
		Clock:       fake,
	})

	return &testEnv{db: conn, clock: fake, products: productSvc, history: historySvc}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestProductHistoryOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	pen, err := env.products.Create(ctx, productdomain.CreateRequest{Name: "Pen", Stock: intPtr(5)})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.products.Update(ctx, productdomain.UpdateRequest{ID: pen.ID, Stock: intPtr(0)})
	require.NoError(t, err)

	resp, err := env.history.ProductHistory(ctx, pen.ID)
	require.NoError(t, err)

	assert.Equal(t, "Pen", resp.Product.Name)
	assert.Equal(t, 0, resp.Product.Stock)
	assert.Equal(t, string(productdomain.BucketOutOfStock), resp.Product.StockBucket)

	require.Len(t, resp.History, 2)
	assert.Equal(t, 5, resp.History[0].OldQuantity)
	assert.Equal(t, 0, resp.History[0].NewQuantity)
	assert.Equal(t, -5, resp.History[0].ChangeAmount)
	assert.Equal(t, domain.ReasonManualUpdate, resp.History[0].Reason)
	assert.Equal(t, domain.ReasonInitialStock, resp.History[1].Reason)
}

func TestProductHistoryErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.history.ProductHistory(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidProductID)

	_, err = env.history.ProductHistory(ctx, "123456789")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListFiltersByProductAndDate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	pen, err := env.products.Create(ctx, productdomain.CreateRequest{Name: "Pen", Stock: intPtr(5)})
	require.NoError(t, err)
	_, err = env.products.Create(ctx, productdomain.CreateRequest{Name: "Pencil", Stock: intPtr(2)})
	require.NoError(t, err)

	env.clock.Advance(48 * time.Hour)
	_, err = env.products.Update(ctx, productdomain.UpdateRequest{ID: pen.ID, Stock: intPtr(9)})
	require.NoError(t, err)

	entries, page, err := env.history.List(ctx, domain.ListRequest{ProductID: pen.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, entries, 2)
	assert.Equal(t, "Pen", entries[0].ProductName)

	// only the entry inside the window survives
	from := env.clock.Now().Add(-time.Hour)
	entries, _, err = env.history.List(ctx, domain.ListRequest{From: &from})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonManualUpdate, entries[0].Reason)

	to := env.clock.Now().Add(-time.Hour)
	entries, _, err = env.history.List(ctx, domain.ListRequest{To: &to})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListRejectsInvertedDateRange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	from := env.clock.Now()
	to := from.Add(-time.Hour)
	_, _, err := env.history.List(ctx, domain.ListRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestSummaryBucketsAndValue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	seed := []productdomain.CreateRequest{
		{Name: "Empty", Stock: intPtr(0)},
		{Name: "Scarce", Stock: intPtr(10), Status: strPtr("inactive")},
		{Name: "Plenty", Stock: intPtr(11)},
		{Name: "Bulk", Stock: intPtr(100)},
	}
	for _, req := range seed {
		_, err := env.products.Create(ctx, req)
		require.NoError(t, err)
	}

	summary, err := env.history.Summary(ctx, domain.SummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.TotalProducts)
	assert.Equal(t, int64(1), summary.StockLevels["out_of_stock"])
	// threshold is an inclusive low-stock bound
	assert.Equal(t, int64(1), summary.StockLevels["low_stock"])
	assert.Equal(t, int64(2), summary.StockLevels["in_stock"])
	assert.Equal(t, int64(3), summary.StatusDistribution["active"])
	assert.Equal(t, int64(1), summary.StatusDistribution["inactive"])
	assert.Equal(t, int64(0), summary.StatusDistribution["discontinued"])
	assert.Equal(t, int64(121), summary.TotalInventoryValue)
}

func TestSummaryRecentActivityIgnoresBucketFilter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	pen, err := env.products.Create(ctx, productdomain.CreateRequest{
		Name:     "Pen",
		Category: strPtr("Stationery"),
		Stock:    intPtr(5),
	})
	require.NoError(t, err)
	_, err = env.products.Create(ctx, productdomain.CreateRequest{
		Name:     "Monitor",
		Category: strPtr("Electronics"),
		Stock:    intPtr(40),
	})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.products.Update(ctx, productdomain.UpdateRequest{ID: pen.ID, Stock: intPtr(7)})
	require.NoError(t, err)

	// bucket filter narrows products but not the activity count
	summary, err := env.history.Summary(ctx, domain.SummaryRequest{StockBucket: "in_stock"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalProducts)
	assert.Equal(t, int64(3), summary.RecentActivity)

	// category filter narrows both
	summary, err = env.history.Summary(ctx, domain.SummaryRequest{Category: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalProducts)
	assert.Equal(t, int64(1), summary.RecentActivity)
}

func TestSummaryRecentActivityWindow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	pen, err := env.products.Create(ctx, productdomain.CreateRequest{Name: "Pen", Stock: intPtr(5)})
	require.NoError(t, err)

	// push the initial entry outside the 30-day window
	env.clock.Advance(31 * 24 * time.Hour)
	_, err = env.products.Update(ctx, productdomain.UpdateRequest{ID: pen.ID, Stock: intPtr(6)})
	require.NoError(t, err)

	summary, err := env.history.Summary(ctx, domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.RecentActivity)
}

func TestSummaryRejectsUnknownBucket(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.history.Summary(ctx, domain.SummaryRequest{StockBucket: "plentiful"})
	assert.ErrorIs(t, err, domain.ErrInvalidStockBucket)
}
