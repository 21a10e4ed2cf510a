package api

import (
	"context"
	"net/http"
	"time"

	"pantry-recommender/internal/api/handlers/health"
	recommendHandler "pantry-recommender/internal/api/handlers/recommend"
	"pantry-recommender/internal/api/middleware"
	"pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單一請求的處理上限
const timeoutDuration = 30 * time.Second

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *recommend.Service) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 注入設定與服務並設置超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(health.ConfigKey, cfg)
		c.Set(health.ServiceKey, svc)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrRequestTimeout.ToResponse(false))
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	h := recommendHandler.NewHandler(svc, cfg.App.Debug)

	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg))
	{
		api.POST("/recommendations", h.HandleRecommend)
		api.POST("/match", h.HandleMatch)

		recipes := api.Group("/recipes")
		{
			recipes.POST("/availability", h.HandleAvailability)
			recipes.POST("/:id/accept", h.HandleAccept)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("catalog_enabled", cfg.Catalog.Enabled),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.Duration("timeout", timeoutDuration),
	)

	return router
}
