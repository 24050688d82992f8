package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/darisni/backend/config"
	"github.com/darisni/backend/internal/meetings"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
	"github.com/darisni/backend/internal/worker"
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

	loc := cfg.Locale.Location()
	sessionRepo := sessions.NewRepository(pool, loc)
	notifyRepo := notify.NewRepository(pool)

	var smsSender notify.SMSSender
	if sms := notify.NewSMSClient(cfg.SMS, logger); sms != nil {
		smsSender = sms
	}
	dispatcher := notify.NewDispatcher(notifyRepo, smsSender, logger)

	zoom := meetings.NewZoomClient(cfg.Zoom, logger)

	reminders := worker.NewReminderProcessor(sessionRepo, dispatcher, logger)
	provisioner := worker.NewMeetingProcessor(sessionRepo, zoom, dispatcher, rdb, logger)
	runner := worker.NewRunner(queue.NewQueue(rdb.Client, logger), reminders, provisioner, logger)

	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("worker starting")
		runner.Run(runCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker")
	stop()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		logger.Warn("worker shutdown timed out")
	}
	logger.Info("worker stopped")
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
