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

	"github.com/darisni/backend/config"
	"github.com/darisni/backend/internal/auth"
	"github.com/darisni/backend/internal/bookings"
	"github.com/darisni/backend/internal/middleware"
	"github.com/darisni/backend/internal/models"
	"github.com/darisni/backend/internal/notify"
	"github.com/darisni/backend/internal/sessions"
	"github.com/darisni/backend/pkg/database"
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

	if err := database.Migrate(context.Background(), pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	loc := cfg.Locale.Location()

	userRepo := auth.NewRepository(pool)
	sessionRepo := sessions.NewRepository(pool, loc)
	bookingRepo := bookings.NewRepository(pool)
	notifyRepo := notify.NewRepository(pool)

	var smsSender notify.SMSSender
	if sms := notify.NewSMSClient(cfg.SMS, logger); sms != nil {
		smsSender = sms
	}
	dispatcher := notify.NewDispatcher(notifyRepo, smsSender, logger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authHandler := auth.NewHandler(userRepo, jwtService, logger)
	bookingHandler := bookings.NewHandler(bookingRepo, sessionRepo, userRepo, dispatcher, logger)
	sessionHandler := sessions.NewHandler(sessionRepo)
	notifyHandler := notify.NewHandler(notifyRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(middleware.JWT(jwtService))
		{
			authed.GET("/auth/me", authHandler.Me)
			authed.GET("/teachers", authHandler.ListTeachers)

			authed.GET("/bookings", bookingHandler.List)
			authed.POST("/bookings", middleware.RequireRole(string(models.RoleStudent)), bookingHandler.Create)
			authed.POST("/bookings/:id/confirm", middleware.RequireRole(string(models.RoleTeacher)), bookingHandler.Confirm)
			authed.POST("/bookings/:id/cancel", bookingHandler.Cancel)

			authed.GET("/sessions", sessionHandler.List)
			authed.GET("/sessions/:id", sessionHandler.GetByID)

			authed.GET("/notifications", notifyHandler.List)
			authed.GET("/notifications/unread-count", notifyHandler.UnreadCount)
			authed.POST("/notifications/:id/read", notifyHandler.MarkRead)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
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
