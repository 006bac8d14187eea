package router

import (
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/handler"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/middleware"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/repository"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/service"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators built once in cmd/server.
// Images is required. A nil Mailer is built from cfg; a nil Gatherer leaves
// /metrics unmounted.
type Deps struct {
	Images   infra.ImageStore
	Mailer   *infra.Mailer
	Metrics  *metrics.CatalogMetrics
	Gatherer prometheus.Gatherer
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Mailer == nil {
		deps.Mailer = infra.NewMailer(cfg)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	barcodeRepo := repository.NewBarcodeRepository(db)
	stocktakeRepo := repository.NewStocktakeRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(cfg)
	importSvc := service.NewCatalogImportService(productRepo, deps.Metrics)
	resolverSvc := service.NewResolverService(productRepo, deps.Metrics)
	overrideSvc := service.NewOverrideService(productRepo, barcodeRepo, deps.Metrics)
	imageSvc := service.NewImageService(deps.Images)
	stocktakeSvc := service.NewStocktakeService(stocktakeRepo, resolverSvc)

	// Reorder e-mails go through Redis when configured, inline otherwise
	dispatcher := worker.NewDispatcher(rdb, deps.Mailer, deps.Metrics)
	reorderSvc := service.NewReorderService(resolverSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(resolverSvc, imageSvc, cfg.SearchDefaultLimit)
	overridesH := handler.NewOverridesHandler(overrideSvc)
	catalogH := handler.NewCatalogHandler(importSvc, cfg.DataDir)
	stocktakeH := handler.NewStocktakeHandler(stocktakeSvc)
	reorderH := handler.NewReorderHandler(reorderSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Mailer))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/pin", middleware.LoginRateLimiter(cfg.LoginAttemptsPerMinute), authH.PinLogin)

		// Price check: no auth required
		v1.GET("/products/search", productsH.Search)
		v1.GET("/search", productsH.Search)
		v1.GET("/products/:code/image", productsH.Image)

		v1.POST("/reorder", reorderH.Submit)

		st := v1.Group("/stocktake")
		{
			st.GET("/bins", stocktakeH.ListBins)
			st.GET("/bin_products", stocktakeH.BinProducts)
			st.GET("/bin_sheet", stocktakeH.BinSheet)
			st.POST("/item", stocktakeH.UpsertItem)
			st.GET("/items", stocktakeH.ListItems)
			st.DELETE("/items", stocktakeH.ClearItems)
			st.POST("/move", stocktakeH.MoveItem)
			st.GET("/export", stocktakeH.ExportSession)
			st.GET("/export_all_bins", stocktakeH.ExportAllBins)
			st.GET("/export_all_merged", stocktakeH.ExportAllMerged)
		}
	}

	// Admin: session token or X-Admin-Pin
	admin := r.Group("/v1/admin", middleware.AdminAuth(authSvc))
	{
		admin.POST("/catalog/import", catalogH.Import)

		admin.GET("/products/:code/barcode", overridesH.Get)
		admin.PUT("/products/:code/barcode", overridesH.Set)
		admin.DELETE("/products/:code/barcode", overridesH.Clear)

		admin.POST("/products/:code/image", productsH.UploadImage)
		admin.DELETE("/products/:code/image", productsH.DeleteImage)

		admin.POST("/stocktake/bins/upload", stocktakeH.UploadBins)
		admin.POST("/reorder", reorderH.Submit)
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
