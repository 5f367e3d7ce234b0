package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-collector/internal/api/handlers/health"
	recipeHandler "recipe-collector/internal/api/handlers/recipe"
	"recipe-collector/internal/api/middleware"
	"recipe-collector/internal/core/ai/cache"
	"recipe-collector/internal/core/ai/queue"
	"recipe-collector/internal/core/recipecache"
	"recipe-collector/internal/infrastructure/bootstrap"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/infrastructure/metrics"
	"recipe-collector/internal/pkg/common"
)

// Deps 路由需要的元件；Queue 與 Store 可為 nil
type Deps struct {
	Extractor recipeHandler.Extractor
	Recipes   *recipecache.Cache
	Queue     *queue.Manager
	Store     cache.Store
}

// SetupRouter 以組裝好的元件設置路由
func SetupRouter(app *bootstrap.App) *gin.Engine {
	return NewRouter(app.Config, Deps{
		Extractor: app.Orchestrator,
		Recipes:   app.Recipes,
		Queue:     app.Queue,
		Store:     app.AICache,
	})
}

// NewRouter 設置路由
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 健康檢查與指標不受限流影響
	healthHandler := health.NewHandler(cfg, deps.Queue, deps.Recipes, deps.Store)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	if cfg.Server.MaxBodyBytes > 0 {
		api.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	}
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit))
	}
	api.Use(requestTimeout(cfg.Server.RequestTimeout))

	handler := recipeHandler.NewHandler(deps.Extractor, deps.Recipes, cfg.Server.MaxBodyBytes, cfg.App.Debug)
	{
		api.POST("/extract", middleware.Deduplication(cfg.DedupWindow), handler.HandleExtract)
		api.GET("/recipes/:token", handler.HandleGetRecipe)
		api.GET("/recipes/:token/export", handler.HandleExport)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

// requestTimeout 為每個請求設置上限，處理程序未回應時回傳 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    "REQUEST_TIMEOUT",
				Message: "request timeout",
			})
		}
	}
}
