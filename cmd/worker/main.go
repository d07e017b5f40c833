// Package main runs the background video publishing worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nanna-memorial/backend/config"
	"github.com/nanna-memorial/backend/internal/content"
	"github.com/nanna-memorial/backend/internal/worker"
	"github.com/nanna-memorial/backend/internal/youtube"
	"github.com/nanna-memorial/backend/pkg/database"
	"github.com/nanna-memorial/backend/pkg/queue"
	"github.com/nanna-memorial/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		MediaBucket:          cfg.AWS.MediaBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	// Publishing is optional: without credentials the worker consumes jobs
	// with a warning instead of failing.
	var host worker.VideoHost
	if cfg.YouTube.Enabled() {
		ytClient, err := youtube.NewClient(ctx, cfg.YouTube)
		if err != nil {
			logger.Fatal("youtube", zap.Error(err))
		}
		host = ytClient
	} else {
		logger.Warn("youtube credentials not configured, video publishing disabled")
	}

	repo := content.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	publisher := worker.NewVideoPublisher(repo, s3Client, host, jobQueue, logger)
	reconciler := worker.NewReconciler(repo, jobQueue,
		time.Duration(cfg.Reconcile.IntervalMinutes)*time.Minute,
		time.Duration(cfg.Reconcile.AgeMinutes)*time.Minute,
		logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go publisher.Run(workerCtx)
	go reconciler.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
