package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	categorydomain "github.com/smallbiznis/stockyard/internal/category/domain"
	"github.com/smallbiznis/stockyard/internal/config"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	"github.com/smallbiznis/stockyard/internal/observability"
	obslogger "github.com/smallbiznis/stockyard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockyard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stockyard/internal/observability/tracing"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	transferdomain "github.com/smallbiznis/stockyard/internal/transfer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
		s.RegisterUIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORSMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Params struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	ProductSvc  productdomain.Service
	HistorySvc  historydomain.Service
	CategorySvc categorydomain.Service
	TransferSvc transferdomain.Service
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	productSvc  productdomain.Service
	historySvc  historydomain.Service
	categorySvc categorydomain.Service
	transferSvc transferdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		db:          p.DB,
		productSvc:  p.ProductSvc,
		historySvc:  p.HistorySvc,
		categorySvc: p.CategorySvc,
		transferSvc: p.TransferSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/categories/all", s.ListProductCategories)
	api.GET("/products/:id", s.GetProductByID)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Categories (seeded lookup, read-only) --------
	api.GET("/categories", s.ListCategories)

	// -------- Inventory history --------
	api.GET("/history", s.ListHistory)
	api.GET("/history/summary", s.GetInventorySummary)
	api.GET("/history/product/:productId", s.GetProductHistory)

	// -------- Bulk transfer --------
	api.POST("/import/products", s.ImportProducts)
	api.GET("/import/products", s.ExportProducts)
}

// RegisterUIRoutes serves the static dashboard with an SPA-style fallback.
func (s *Server) RegisterUIRoutes() {
	staticDir := s.cfg.StaticDir
	if staticDir == "" {
		return
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(staticDir, "index.html"))
	})
	s.engine.NoRoute(func(c *gin.Context) {
		if fileExists(staticDir, c.Request.URL.Path) {
			c.File(filepath.Join(staticDir, filepath.Clean(c.Request.URL.Path)))
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
}

func fileExists(staticDir, reqPath string) bool {
	clean := filepath.Clean(reqPath)

	// prevent path traversal
	if clean == "." || clean == "/" || clean == ".." {
		return false
	}

	info, err := os.Stat(filepath.Join(staticDir, clean))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
