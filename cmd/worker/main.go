// Package main runs the background job worker (notification delivery, invitation expiry).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventmarket/backend/config"
	"github.com/eventmarket/backend/internal/invitations"
	"github.com/eventmarket/backend/internal/notify"
	"github.com/eventmarket/backend/internal/realtime"
	"github.com/eventmarket/backend/internal/worker"
	"github.com/eventmarket/backend/pkg/database"
	"github.com/eventmarket/backend/pkg/queue"
	"github.com/eventmarket/backend/pkg/redis"
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

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewNotificationProcessor(notify.NewRepository(pool), realtime.NewRedisPubSub(rdb.Client, logger), jobQueue, logger)
	sweeper := worker.NewInvitationSweeper(invitations.NewRepository(pool),
		time.Duration(cfg.Worker.InvitationSweepSeconds)*time.Second, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go sweeper.Run(workerCtx)
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
