package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	categorydomain "github.com/smallbiznis/stockyard/internal/category/domain"
	categoryrepo "github.com/smallbiznis/stockyard/internal/category/repository"
	categoryservice "github.com/smallbiznis/stockyard/internal/category/service"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	historyrepo "github.com/smallbiznis/stockyard/internal/history/repository"
	historyservice "github.com/smallbiznis/stockyard/internal/history/service"
	"github.com/smallbiznis/stockyard/internal/observability"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	productrepo "github.com/smallbiznis/stockyard/internal/product/repository"
	productservice "github.com/smallbiznis/stockyard/internal/product/service"
	"github.com/smallbiznis/stockyard/internal/seed"
	"github.com/smallbiznis/stockyard/internal/server"
	transferservice "github.com/smallbiznis/stockyard/internal/transfer/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	httpSrv *httptest.Server
	baseURL string
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.httpSrv.Close()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	conn, err := gorm.Open(sqlite.Open("file:e2e?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(&productdomain.Product{}, &historydomain.Entry{}, &categorydomain.Category{}); err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(9)
	if err != nil {
		return nil, err
	}
	if err := seed.EnsureDefaultCategories(conn, node); err != nil {
		return nil, err
	}

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	policy := config.StaticInventoryPolicyHolder(config.DefaultInventoryPolicy())

	productSvc := productservice.New(productservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        productrepo.Provide(),
		HistoryRepo: historyrepo.Provide(),
		Policy:      policy,
		Clock:       fake,
	})
	historySvc := historyservice.New(historyservice.Params{
		DB:          conn,
		Log:         log,
		Repo:        historyrepo.Provide(),
		ProductRepo: productrepo.Provide(),
		Policy:      policy,
		Clock:       fake,
	})
	categorySvc := categoryservice.New(categoryservice.Params{
		DB:   conn,
		Repo: categoryrepo.Provide(),
	})
	transferSvc := transferservice.New(transferservice.Params{
		DB:          conn,
		Log:         log,
		ProductSvc:  productSvc,
		ProductRepo: productrepo.Provide(),
		Policy:      policy,
	})

	engine := server.NewEngine(observability.Config{}, nil)
	srv := server.NewServer(server.Params{
		Engine:      engine,
		Cfg:         config.Config{},
		DB:          conn,
		ProductSvc:  productSvc,
		HistorySvc:  historySvc,
		CategorySvc: categorySvc,
		TransferSvc: transferSvc,
	})
	srv.RegisterAPIRoutes()

	httpSrv := httptest.NewServer(engine)
	return &testEnv{
		db:      conn,
		clock:   fake,
		httpSrv: httpSrv,
		baseURL: httpSrv.URL,
	}, nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	for _, table := range []string{"inventory_history", "products"} {
		if err := env.db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
	Error string `json:"error"`
}

func doJSON(t *testing.T, method, path string, payload any) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func createProduct(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()

	status, out := doJSON(t, http.MethodPost, "/api/products", payload)
	if status != http.StatusCreated {
		t.Fatalf("create product: status %d message %q", status, out.Message)
	}

	var product map[string]any
	if err := json.Unmarshal(out.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	return product
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestProductLifecycle(t *testing.T) {
	resetDatabase(t)

	product := createProduct(t, map[string]any{
		"name":     "Blue Pen",
		"category": "Stationery",
		"stock":    5,
	})
	id := product["id"].(string)
	if product["stock_bucket"] != "low_stock" {
		t.Fatalf("expected low_stock, got %v", product["stock_bucket"])
	}

	status, out := doJSON(t, http.MethodGet, "/api/products/"+id, nil)
	if status != http.StatusOK || !out.Success {
		t.Fatalf("get product: status %d", status)
	}

	status, out = doJSON(t, http.MethodPut, "/api/products/"+id, map[string]any{"stock": 0})
	if status != http.StatusOK {
		t.Fatalf("update product: status %d message %q", status, out.Message)
	}
	var updated map[string]any
	if err := json.Unmarshal(out.Data, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated["stock_bucket"] != "out_of_stock" {
		t.Fatalf("expected out_of_stock, got %v", updated["stock_bucket"])
	}

	status, out = doJSON(t, http.MethodGet, "/api/history/product/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("product history: status %d", status)
	}
	var history struct {
		History []struct {
			ChangeAmount int    `json:"change_amount"`
			Reason       string `json:"reason"`
		} `json:"history"`
	}
	if err := json.Unmarshal(out.Data, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.History) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history.History))
	}
	if history.History[0].ChangeAmount != -5 || history.History[0].Reason != "Manual update" {
		t.Fatalf("unexpected latest entry: %+v", history.History[0])
	}

	status, _ = doJSON(t, http.MethodDelete, "/api/products/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("delete product: status %d", status)
	}
	status, _ = doJSON(t, http.MethodGet, "/api/products/"+id, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	resetDatabase(t)

	status, out := doJSON(t, http.MethodPost, "/api/products", map[string]any{"name": ""})
	if status != http.StatusBadRequest || out.Success {
		t.Fatalf("expected 400 envelope, got %d success=%v", status, out.Success)
	}
	if out.Message == "" {
		t.Fatal("expected a message on validation failure")
	}

	createProduct(t, map[string]any{"name": "Pen"})
	status, _ = doJSON(t, http.MethodPost, "/api/products", map[string]any{"name": "Pen"})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", status)
	}

	status, _ = doJSON(t, http.MethodGet, "/api/products/999999999", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", status)
	}

	status, _ = doJSON(t, http.MethodGet, "/api/products?stock_level=backordered", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad bucket, got %d", status)
	}
}

func TestListPaginationEnvelope(t *testing.T) {
	resetDatabase(t)

	for i := 0; i < 12; i++ {
		createProduct(t, map[string]any{"name": fmt.Sprintf("Item %02d", i)})
	}

	status, out := doJSON(t, http.MethodGet, "/api/products?page=2&limit=5", nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	if out.Pagination == nil {
		t.Fatal("expected pagination metadata")
	}
	if out.Pagination.Total != 12 || out.Pagination.Pages != 3 || out.Pagination.Page != 2 {
		t.Fatalf("unexpected pagination: %+v", out.Pagination)
	}

	var items []map[string]any
	if err := json.Unmarshal(out.Data, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
}

func TestCategoriesEndpoints(t *testing.T) {
	resetDatabase(t)

	// the seeded lookup table
	status, out := doJSON(t, http.MethodGet, "/api/categories", nil)
	if status != http.StatusOK {
		t.Fatalf("categories: status %d", status)
	}
	var lookup []map[string]any
	if err := json.Unmarshal(out.Data, &lookup); err != nil {
		t.Fatalf("decode lookup: %v", err)
	}
	if len(lookup) != len(categorydomain.DefaultNames) {
		t.Fatalf("expected %d seeded categories, got %d", len(categorydomain.DefaultNames), len(lookup))
	}

	// distinct categories in use start empty
	status, out = doJSON(t, http.MethodGet, "/api/products/categories/all", nil)
	if status != http.StatusOK {
		t.Fatalf("product categories: status %d", status)
	}
	var inUse []string
	if err := json.Unmarshal(out.Data, &inUse); err != nil {
		t.Fatalf("decode in-use categories: %v", err)
	}
	if len(inUse) != 0 {
		t.Fatalf("expected no categories in use, got %v", inUse)
	}

	createProduct(t, map[string]any{"name": "Pen", "category": "Stationery"})
	_, out = doJSON(t, http.MethodGet, "/api/products/categories/all", nil)
	if err := json.Unmarshal(out.Data, &inUse); err != nil {
		t.Fatalf("decode in-use categories: %v", err)
	}
	if len(inUse) != 1 || inUse[0] != "Stationery" {
		t.Fatalf("expected [Stationery], got %v", inUse)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	resetDatabase(t)

	createProduct(t, map[string]any{"name": "Empty", "stock": 0})
	createProduct(t, map[string]any{"name": "Scarce", "stock": 3})
	createProduct(t, map[string]any{"name": "Plenty", "stock": 50})

	status, out := doJSON(t, http.MethodGet, "/api/history/summary", nil)
	if status != http.StatusOK {
		t.Fatalf("summary: status %d", status)
	}

	var summary struct {
		TotalProducts int64            `json:"totalProducts"`
		StockLevels   map[string]int64 `json:"stockLevels"`
	}
	if err := json.Unmarshal(out.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalProducts != 3 {
		t.Fatalf("expected 3 products, got %d", summary.TotalProducts)
	}
	if summary.StockLevels["out_of_stock"] != 1 || summary.StockLevels["low_stock"] != 1 || summary.StockLevels["in_stock"] != 1 {
		t.Fatalf("unexpected stock levels: %v", summary.StockLevels)
	}
}

func TestCSVImportAndExport(t *testing.T) {
	resetDatabase(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "products.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(part, "name,category,stock\nPen,Stationery,5\nMonitor,Electronics,40\n")
	writer.Close()

	resp, err := http.Post(env.baseURL+"/api/import/products", writer.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("import request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status %d", resp.StatusCode)
	}

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	var result struct {
		Processed int `json:"processed"`
		Added     int `json:"added"`
		Skipped   int `json:"skipped"`
	}
	if err := json.Unmarshal(out.Data, &result); err != nil {
		t.Fatalf("decode import result: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	expResp, err := http.Get(env.baseURL + "/api/import/products")
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer expResp.Body.Close()
	if expResp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", expResp.StatusCode)
	}
	if ct := expResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if cd := expResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "products_export_") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	body, err := io.ReadAll(expResp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
}
