package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"familyplate/internal/api"
	"familyplate/internal/config"
	"familyplate/internal/kv"
	"familyplate/internal/platform/gemini"
	"familyplate/internal/platform/localllm"
	"familyplate/internal/recipe"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := newKVStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize extraction client", zap.String("provider", cfg.Extraction.Provider), zap.Error(err))
	}

	handler := api.NewHandler(extractor, recipe.NewStore(store), logger)
	handler.MaxImageWidth = cfg.Image.MaxWidth
	handler.JPEGQuality = cfg.Image.JPEGQuality

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/api/recipes/extract", handler.ExtractRecipe)
	r.GET("/api/recipes", handler.ListRecipes)
	r.GET("/api/recipes/:id", handler.GetRecipe)
	r.PUT("/api/recipes/:id", handler.UpdateRecipe)
	r.DELETE("/api/recipes/:id", handler.DeleteRecipe)
	r.POST("/api/recipes/:id/shopping-preview", handler.ShoppingPreview)
	r.GET("/api/shopping-list", handler.GetShoppingList)
	r.POST("/api/shopping-list/merge", handler.MergeShoppingList)
	r.POST("/api/shopping-list/:id/toggle", handler.ToggleShoppingItem)
	r.DELETE("/api/shopping-list/:id", handler.DeleteShoppingItem)
	r.DELETE("/api/shopping-list", handler.ClearShoppingList)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("extraction", cfg.Extraction.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}

func newKVStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return kv.NewPostgresStore(cfg.Storage.DatabaseURL)
	case "redis":
		return kv.NewRedisStore(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newExtractor(ctx context.Context, cfg *config.Config) (api.ExtractionClient, error) {
	switch cfg.Extraction.Provider {
	case "gemini":
		return gemini.NewClient(ctx, cfg.Extraction.GeminiAPIKey, cfg.Extraction.GeminiModel)
	case "local":
		return localllm.NewClient(cfg.Extraction.LocalURL, cfg.Extraction.LocalModel, cfg.Extraction.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.Extraction.Provider)
	}
}
