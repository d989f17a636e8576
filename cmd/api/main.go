package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kokitko/bookinline-sub000/internal/api"
	"github.com/kokitko/bookinline-sub000/internal/api/handler"
	"github.com/kokitko/bookinline-sub000/internal/api/middleware"
	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/config"
	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	kafkainfra "github.com/kokitko/bookinline-sub000/internal/infrastructure/kafka"
	"github.com/kokitko/bookinline-sub000/internal/infrastructure/postgres"
	redisinfra "github.com/kokitko/bookinline-sub000/internal/infrastructure/redis"
	"github.com/kokitko/bookinline-sub000/internal/pkg/logger"
	"github.com/kokitko/bookinline-sub000/internal/pkg/metrics"
	"github.com/kokitko/bookinline-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーション実行に失敗", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}

	lockManager := redisinfra.NewLockManager(redisClient, m)
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient)

	// 予約イベント配信（無効時はnilのまま）
	var publisher booking.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := kafkainfra.NewEventPublisher(&cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// リポジトリとサービス
	bookingRepo := postgres.NewBookingRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	checker := application.NewAvailabilityChecker(bookingRepo, propertyRepo, availabilityCache)
	bookingService := application.NewBookingService(txManager, bookingRepo, propertyRepo, userRepo, checker, lockManager, publisher, m)
	propertyService := application.NewPropertyService(propertyRepo, userRepo, checker)

	bookingHandler := handler.NewBookingHandler(bookingService)
	propertyHandler := handler.NewPropertyHandler(propertyService, bookingService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")

	v1.POST("/properties", propertyHandler.Create)
	v1.GET("/properties", propertyHandler.List)
	v1.GET("/properties/search", propertyHandler.Search)
	v1.GET("/properties/:id", propertyHandler.GetByID)
	v1.GET("/properties/:id/availability", propertyHandler.CheckAvailability)
	v1.PATCH("/properties/:id/availability", propertyHandler.SetAvailability)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetGuestBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	// 外部スケジューラー向けの掃き出しエントリポイント
	admin := v1.Group("/admin", middleware.AdminOnly(userRepo))
	admin.POST("/sweep", bookingHandler.Sweep)

	// チェックアウトスイーパー
	// 無効化して外部cronから /admin/sweep を叩く構成も可能
	sweeperCtx, cancelSweeper := context.WithCancel(ctx)
	defer cancelSweeper()
	var sweeper *worker.CheckoutSweeper
	if cfg.Sweeper.Enabled {
		sweeper = worker.NewCheckoutSweeper(bookingService, cfg.Sweeper.Interval)
		go sweeper.Start(sweeperCtx)
	}

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
