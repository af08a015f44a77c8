// cmd/checkout-service/main.go
package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"codgate/internal/pkg/bootstrap"
	"codgate/internal/pkg/config"
	"codgate/internal/pkg/httpclient"
	"codgate/internal/pkg/logger"
	pkgredis "codgate/internal/pkg/redis"
	"codgate/internal/service/checkout/application"
	"codgate/internal/service/checkout/domain/port"
	"codgate/internal/service/checkout/infrastructure"
	"codgate/internal/service/checkout/infrastructure/adapter"
	"codgate/internal/service/checkout/interfaces"
)

const serviceName = "checkout-service"

// main 是应用的"组装根" (Composition Root):
// 创建并组装所有依赖项，然后交给 bootstrap 启动。
func main() {
	bootstrap.Init()
	cfg := config.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(
		&infrastructure.ShopSettingsModel{},
		&infrastructure.OrderTrackingModel{},
		&infrastructure.CartSessionModel{},
	); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to run schema migration")
	}

	redisClient := pkgredis.NewClient(cfg.Infra.Redis.Addr)

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)

	settingsRepo := infrastructure.NewCachedSettingsRepository(
		infrastructure.NewGormSettingsRepository(db),
		redisClient,
		cfg.SettingsCacheTTL(),
	)
	trackingRepo := infrastructure.NewGormTrackingRepository(db)
	sessionRepo := infrastructure.NewGormCartSessionRepository(db)

	orderAPI := adapter.NewOrderHTTPAdapter(
		httpClient,
		cfg.Infra.OrderAPI.Endpoint,
		cfg.Infra.OrderAPI.AccessToken,
		time.Duration(cfg.Infra.OrderAPI.TimeoutSeconds)*time.Second,
	)

	var riskScorer port.RiskScorer
	if cfg.Infra.RiskAPI.Endpoint != "" {
		riskScorer = adapter.NewRiskHTTPAdapter(
			httpClient,
			cfg.Infra.RiskAPI.Endpoint,
			time.Duration(cfg.Infra.RiskAPI.TimeoutSeconds)*time.Second,
		)
	}

	var purchaseEvents port.PurchaseEventProducer
	var kafkaProducer *adapter.PurchaseKafkaAdapter
	if len(cfg.Infra.Kafka.Brokers) > 0 {
		kafkaProducer = adapter.NewPurchaseKafkaAdapter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.PurchaseTopic)
		purchaseEvents = kafkaProducer
	}

	service := application.NewCheckoutService(
		settingsRepo,
		trackingRepo,
		sessionRepo,
		orderAPI,
		riskScorer,
		purchaseEvents,
		tracer,
	)
	handler := interfaces.NewCheckoutHandler(service, cfg.Proxy.SharedSecret)

	shutdownHooks := []func(ctx context.Context) error{
		func(context.Context) error { return redisClient.Close() },
	}
	if kafkaProducer != nil {
		shutdownHooks = append(shutdownHooks, func(context.Context) error { return kafkaProducer.Close() })
	}
	if sqlDB, err := db.DB(); err == nil {
		shutdownHooks = append(shutdownHooks, func(context.Context) error { return sqlDB.Close() })
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: shutdownHooks,
	})
}
