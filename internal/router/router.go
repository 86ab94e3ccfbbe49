package router

import (
	"time"

	"kraisys/internal/config"
	"kraisys/internal/handler"
	"kraisys/internal/middleware"
	"kraisys/internal/repository"
	"kraisys/internal/service"
	"kraisys/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the job
// handlers for the async worker pool.
// Dependency graph: Handler <- Service <- Repository <- DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, map[string]worker.Processor) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	modelRepo := repository.NewModelRepository(db)
	specRepo := repository.NewSpecificationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(catalogRepo, rdb, time.Duration(cfg.CatalogCacheTTLMinutes)*time.Minute)
	specSvc := service.NewSpecificationService(specRepo, catalogSvc)
	modelSvc := service.NewModelService(modelRepo, specRepo)

	// Worker dispatcher - injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	materialSvc := service.NewMaterialService(catalogRepo, historyRepo, catalogSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	modelsH := handler.NewModelsHandler(modelSvc)
	specsH := handler.NewSpecificationsHandler(specSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	materialsH := handler.NewMaterialsHandler(materialSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: viewer, technologist, admin - declared per-endpoint
		anyRole := middleware.RequireRole("viewer", "technologist", "admin")
		writer := middleware.RequireRole("technologist", "admin")
		adminOnly := middleware.RequireRole("admin")

		// Models
		v1.GET("/models", anyRole, modelsH.List)
		v1.GET("/models/:id", anyRole, modelsH.GetByID)
		v1.POST("/models", writer, modelsH.Create)
		v1.PUT("/models/:id", writer, modelsH.Update)
		v1.DELETE("/models/:id", writer, modelsH.Deactivate)

		// Base specification of a model
		v1.PUT("/models/:id/base-specification", writer, specsH.SaveBase)
		v1.DELETE("/models/:id/base-specification", writer, specsH.DeactivateBase)

		// Variant workflow
		v1.GET("/models/:id/variants", anyRole, specsH.ListVariants)
		v1.GET("/models/:id/variants/new", writer, specsH.NewVariantEditor)
		v1.POST("/specifications/variants", writer, specsH.SaveVariant)
		v1.POST("/specifications/variants/parts", writer, specsH.AppendPart)
		v1.GET("/specifications/:id", anyRole, specsH.Get)
		v1.GET("/specifications/:id/edit", writer, specsH.EditVariantEditor)

		// Reference catalogs
		v1.GET("/catalog/:kind", anyRole, catalogH.List)
		v1.POST("/catalog/:kind", adminOnly, catalogH.Create)
		v1.PUT("/catalog/:kind/:id", adminOnly, catalogH.Update)
		v1.GET("/cutting-materials", anyRole, catalogH.CuttingMaterials)

		// Material prices
		v1.PATCH("/materials/:id/price", writer, materialsH.UpdatePrice)
		v1.GET("/materials/:id/price-history", anyRole, materialsH.PriceHistory)

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Async job handlers, consumed by the worker pool in main.
	jobHandlers := map[string]worker.Processor{
		"recost": worker.NewRecostWorker(specSvc),
	}

	return r, jobHandlers
}
