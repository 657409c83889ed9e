package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/adapter"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/api"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-hotel-channel-manager/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/config"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/ical"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-hotel-channel-manager/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/lock"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/worker"
)

func main() {
	// .envは存在すれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := postgres.Ping(ctx, db); err != nil {
		cancel()
		logger.Fatal("データベース疎通確認に失敗", zap.Error(err))
	}
	cancel()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		cancel()
		logger.Fatal("Redis疎通確認に失敗", zap.Error(err))
	}
	cancel()

	// リポジトリ
	inventoryRepo := postgres.NewInventoryRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	mappingRepo := postgres.NewChannelMappingRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)
	roomTypeRepo := postgres.NewRoomTypeRepository(db)
	txManager := postgres.NewTxManager(db)

	// 分散ロック
	lockStore := redisinfra.NewLockStore(redisClient)
	coordinator := lock.NewCoordinator(lockStore, lock.Config{
		TTL:           cfg.Lock.TTL,
		RetryAttempts: cfg.Lock.RetryAttempts,
		RetryDelay:    cfg.Lock.RetryDelay,
	}, m)

	// チャネルアダプターとキャッシュ
	registry := adapter.DefaultRegistry()
	cache := redisinfra.NewAvailabilityCache(redisClient, cfg.Cache.AvailabilityTTL)

	// 空室数配信ワーカー
	broadcaster := worker.NewBroadcaster(
		mappingRepo, inventoryRepo, registry,
		cfg.Broadcast.QueueSize, cfg.Broadcast.PushTimeout, m,
	)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go broadcaster.Start(workerCtx)

	// 同期エンジン
	engine := application.NewSyncEngine(
		txManager, inventoryRepo, bookingRepo, mappingRepo,
		coordinator, registry, broadcaster,
	).WithCache(cache).WithMetrics(m)

	if cfg.Kafka.Enabled() {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		engine.WithPublisher(publisher)
		logger.Info("Kafkaイベント発行を有効化",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	// アプリケーションサービス
	inventoryService := application.NewInventoryService(inventoryRepo, cache, broadcaster)
	bookingService := application.NewBookingService(bookingRepo, inventoryRepo, coordinator, broadcaster, cache)
	propertyService := application.NewPropertyService(db, propertyRepo, roomTypeRepo)
	channelService := application.NewChannelService(mappingRepo, registry, ical.NewSyncer(inventoryRepo), broadcaster)

	// HTTPサーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.Handlers{
		Health:    handler.NewHealthHandler(),
		Webhook:   handler.NewWebhookHandler(engine),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Rate:      handler.NewRateHandler(engine),
		Booking:   handler.NewBookingHandler(bookingService),
		Property:  handler.NewPropertyHandler(propertyService),
		Channel:   handler.NewChannelHandler(channelService),
	})

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバーを起動します", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	// 受理済みのブロードキャストを処理してからワーカーを停止する
	broadcaster.Stop()

	logger.Info("サーバーが正常にシャットダウンしました")
}
