package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/darisni/backend/config"
	"github.com/darisni/backend/internal/scheduler"
	"github.com/darisni/backend/internal/sessions"
	"github.com/darisni/backend/pkg/database"
	"github.com/darisni/backend/pkg/queue"
	redisclient "github.com/darisni/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		logger.Warn("scheduler config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	sessionRepo := sessions.NewRepository(pool, cfg.Locale.Location())
	jobs := queue.NewQueue(rdb.Client, logger)
	sched := scheduler.New(sessionRepo, jobs, cfg.Scheduler, logger)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// First scan right away so a restart does not wait out a full interval.
	sched.Tick(runCtx)

	c := cron.New()
	spec := fmt.Sprintf("@every %s", cfg.Scheduler.ScanInterval)
	if _, err := c.AddFunc(spec, func() { sched.Tick(runCtx) }); err != nil {
		logger.Fatal("failed to schedule scan", zap.Error(err))
	}
	c.Start()
	logger.Info("scheduler started", zap.Duration("interval", cfg.Scheduler.ScanInterval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down scheduler")
	stop()

	// Let an in-flight tick finish before exiting.
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

func newLogger() *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
