package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry-recommender/internal/api"
	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/core/catalog"
	"pantry-recommender/internal/core/queue"
	"pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("catalog_enabled", cfg.Catalog.Enabled),
		zap.String("catalog_key", config.MaskAPIKey(cfg.Catalog.APIKey)),
	)

	// 初始化快取；停用時為 nil
	store, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}

	q := queue.NewManager(cfg.Queue)
	q.Start()

	var cat *catalog.Client
	if cfg.Catalog.Enabled {
		cat = catalog.NewClient(cfg.Catalog)
	}

	engine := recommend.New(recommend.WithLogger(common.Logger))
	svc := recommend.NewService(cfg, engine, store, q, cat)
	defer func() {
		if err := svc.Close(); err != nil {
			common.LogError("Failed to close service", zap.Error(err))
		}
	}()

	router := api.SetupRouter(cfg, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
