// Package main runs the memorial site API server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nanna-memorial/backend/config"
	"github.com/nanna-memorial/backend/internal/admin"
	"github.com/nanna-memorial/backend/internal/content"
	"github.com/nanna-memorial/backend/internal/gallery"
	"github.com/nanna-memorial/backend/internal/messages"
	"github.com/nanna-memorial/backend/internal/middleware"
	"github.com/nanna-memorial/backend/internal/session"
	"github.com/nanna-memorial/backend/internal/tributes"
	"github.com/nanna-memorial/backend/pkg/database"
	"github.com/nanna-memorial/backend/pkg/queue"
	"github.com/nanna-memorial/backend/pkg/redis"
	"github.com/nanna-memorial/backend/pkg/response"
	"github.com/nanna-memorial/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		MediaBucket:          cfg.AWS.MediaBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	tokens := session.NewTokenService(cfg.Session.Secret, cfg.Session.ExpireHours)
	sessionHandler := session.NewHandler(cfg.Admin, tokens, logger)

	repo := content.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	tributeHandler := tributes.NewHandler(repo, logger)
	galleryHandler := gallery.NewHandler(repo, s3Client, jobQueue, logger)
	messageHandler := messages.NewHandler(repo, logger)
	adminHandler := admin.NewHandler(repo, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public
	router.GET("/tributes", tributeHandler.List)
	router.POST("/tributes", tributeHandler.Submit)
	router.GET("/gallery", galleryHandler.List)
	router.POST("/gallery", galleryHandler.Create)
	router.POST("/upload-url", galleryHandler.UploadURL)
	router.POST("/messages", messageHandler.Submit)
	router.POST("/admin/login", sessionHandler.Login)

	// Moderation (session token or static admin key)
	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(tokens, cfg.Admin.StaticKey))
	{
		adminGroup.GET("/pending", adminHandler.ListPending)
		adminGroup.GET("/approved", adminHandler.ListApproved)
		adminGroup.GET("/messages", adminHandler.ListMessages)
		adminGroup.PATCH("/status", adminHandler.UpdateStatus)
		adminGroup.DELETE("/content", adminHandler.DeleteContent)
		adminGroup.PATCH("/gallery/order", adminHandler.ReorderGallery)
		adminGroup.PATCH("/gallery/item", adminHandler.UpdateGalleryItem)
		adminGroup.POST("/seed", adminHandler.SeedLegacy)
	}

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

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
