package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kokitko/bookinline-sub000/internal/api"
	"github.com/kokitko/bookinline-sub000/internal/api/handler"
	"github.com/kokitko/bookinline-sub000/internal/api/middleware"
	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/config"
	"github.com/kokitko/bookinline-sub000/internal/infrastructure/postgres"
	redisinfra "github.com/kokitko/bookinline-sub000/internal/infrastructure/redis"
)

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを起動することで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()
	ctx := context.Background()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db

	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		db.Close()
		os.Exit(0)
	}

	// Redis接続
	redisClient = redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		db.Close()
		os.Exit(0) // Redis未起動時はスキップ
	}

	// サービス初期化
	lockManager := redisinfra.NewLockManager(redisClient, nil)
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient)

	bookingRepo := postgres.NewBookingRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	checker := application.NewAvailabilityChecker(bookingRepo, propertyRepo, availabilityCache)
	bookingService := application.NewBookingService(txManager, bookingRepo, propertyRepo, userRepo, checker, lockManager, nil, nil)
	propertyService := application.NewPropertyService(propertyRepo, userRepo, checker)

	bookingHandler := handler.NewBookingHandler(bookingService)
	propertyHandler := handler.NewPropertyHandler(propertyService, bookingService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.Validator = api.NewValidator()
	middleware.SetupMiddleware(e)

	e.GET("/health", healthHandler.Check)

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

	admin := v1.Group("/admin", middleware.AdminOnly(userRepo))
	admin.POST("/sweep", bookingHandler.Sweep)

	testServer = &TestServer{Echo: e}

	// テスト実行
	code := m.Run()

	// 最終クリーンアップ
	cleanupTables()
	redisClient.Close()
	db.Close()

	os.Exit(code)
}

// cleanupTables はテーブルをクリーンアップ
func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE bookings, properties, users RESTART IDENTITY CASCADE")
	redisClient.FlushDB(context.Background())
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}
