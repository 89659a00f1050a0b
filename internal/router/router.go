package router

import (
	"time"

	"stockhub/internal/config"
	"stockhub/internal/dto"
	"stockhub/internal/handler"
	"stockhub/internal/infra"
	"stockhub/internal/middleware"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; the dashboard then computes every summary afresh.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.ExposeInternalErrors(!cfg.IsProduction())

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMin, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewSummaryCache(rdb, cfg.SummaryCacheTTL)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	refs := repository.NewReferences(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(stockRepo, cache)
	productSvc := service.NewProductService(productRepo, refs, stockSvc, cache)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, refs, stockSvc, cache)
	dashboardSvc := service.NewDashboardService(dashboardRepo, purchaseRepo, cache, cfg.LowStockThreshold)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stocksH := handler.NewStocksHandler(stockSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	suppliersH := handler.NewReferenceHandler[model.Supplier, *model.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest](
		service.NewReferenceService(refs.Suppliers, "supplier", cache))
	categoriesH := handler.NewReferenceHandler[model.Category, *model.Category, dto.CreateCategoryRequest, dto.NamedPatch](
		service.NewReferenceService(refs.Categories, "category", cache))
	brandsH := handler.NewReferenceHandler[model.Brand, *model.Brand, dto.CreateBrandRequest, dto.NamedPatch](
		service.NewReferenceService(refs.Brands, "brand", cache))
	discountsH := handler.NewReferenceHandler[model.Discount, *model.Discount, dto.CreateDiscountRequest, dto.UpdateDiscountRequest](
		service.NewReferenceService(refs.Discounts, "discount", cache))
	variantTypesH := handler.NewReferenceHandler[model.VariantType, *model.VariantType, dto.CreateVariantTypeRequest, dto.NamedPatch](
		service.NewReferenceService(refs.VariantTypes, "variant type", cache))

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), anyRole)
	{
		prods := v1.Group("/products")
		{
			prods.GET("", productsH.List)
			prods.GET("/:id", productsH.Get)
			// Catalog writes are administrative
			prods.POST("", adminOnly, productsH.Create)
			prods.PATCH("/:id", adminOnly, productsH.Update)
			prods.DELETE("/:id", adminOnly, productsH.Delete)
			prods.POST("/:id/restore", adminOnly, productsH.Restore)
		}

		// Warehouse staff receive goods and correct stock
		stocks := v1.Group("/stocks")
		{
			stocks.GET("", stocksH.List)
			stocks.PATCH("/adjust", stocksH.Adjust)
			stocks.GET("/:id/history", stocksH.History)
		}

		purchases := v1.Group("/purchases")
		{
			purchases.GET("", purchasesH.List)
			purchases.POST("", purchasesH.Create)
			purchases.GET("/:id", purchasesH.Get)
			purchases.PATCH("/:id", purchasesH.Update)
		}

		suppliersH.Register(v1.Group("/suppliers"), model.RoleAdmin, model.RoleStaff)
		categoriesH.Register(v1.Group("/categories"), model.RoleAdmin)
		brandsH.Register(v1.Group("/brands"), model.RoleAdmin)
		discountsH.Register(v1.Group("/discounts"), model.RoleAdmin)
		variantTypesH.Register(v1.Group("/variants"), model.RoleAdmin)

		v1.GET("/dashboard/summary", dashboardH.Summary)
	}

	return r
}
