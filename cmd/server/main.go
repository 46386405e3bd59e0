// Package main runs the media library HTTP server with WebSocket events and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/medialib/backend/config"
	"github.com/medialib/backend/internal/events"
	"github.com/medialib/backend/internal/media"
	"github.com/medialib/backend/internal/middleware"
	"github.com/medialib/backend/pkg/database"
	"github.com/medialib/backend/pkg/redis"
	"github.com/medialib/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("record store ready", zap.String("backend", cfg.Store.Backend))

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	if rdb != nil && cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		store = media.NewCachedStore(store, rdb, ttl, logger)
		logger.Info("record cache enabled", zap.Duration("ttl", ttl))
	}

	var (
		eventsPub events.Publisher
		eventsSub events.Subscriber
	)
	if rdb != nil {
		pubsub := events.NewRedisPubSub(rdb.Client, logger)
		eventsPub, eventsSub = pubsub, pubsub
	}
	hub := events.NewHub(logger, eventsPub, eventsSub)
	defer hub.Close()

	mediaHandler := media.NewHandler(store, hub, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	// Health and metrics
	router.GET("/health", mediaHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Media records API
	api := router.Group("/api")
	{
		api.POST("/media/upload", mediaHandler.Create)
		api.GET("/media/stats", mediaHandler.Stats)
		api.GET("/media/:id", mediaHandler.GetByID)
		api.PUT("/media/:id/update", mediaHandler.Update)
		api.DELETE("/media/:id/delete", mediaHandler.Delete)
		api.GET("/medias", mediaHandler.List)
	}

	// WebSocket event feed
	router.GET("/ws", events.ServeWS(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newStore builds the record store selected by STORE_BACKEND.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (media.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendBolt:
		return media.OpenBoltStore(cfg.Store.BoltPath)

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return media.NewPostgresStore(pool), nil

	case config.BackendS3:
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.MediaBucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return media.NewS3Store(s3Client), nil

	default:
		return media.NewMemoryStore(), nil
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
