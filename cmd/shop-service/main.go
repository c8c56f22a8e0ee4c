package main

import (
	"context"
	"net/http"

	"merx/internal/pkg/bootstrap"
	"merx/internal/pkg/db"
	"merx/internal/pkg/httpclient"
	"merx/internal/pkg/logger"
	"merx/internal/pkg/mq"
	"merx/internal/pkg/redis"
	catalogapp "merx/internal/service/catalog/application"
	cataloginfra "merx/internal/service/catalog/infrastructure"
	catalogifaces "merx/internal/service/catalog/interfaces"
	orderapp "merx/internal/service/order/application"
	orderport "merx/internal/service/order/domain/port"
	orderinfra "merx/internal/service/order/infrastructure"
	"merx/internal/service/order/infrastructure/adapter"
	orderifaces "merx/internal/service/order/interfaces"
	promoapp "merx/internal/service/promotion/application"
	promoinfra "merx/internal/service/promotion/infrastructure"
	"merx/internal/service/promotion/infrastructure/rule"
	promoifaces "merx/internal/service/promotion/interfaces"
	reportapp "merx/internal/service/report/application"
	reportinfra "merx/internal/service/report/infrastructure"
	reportifaces "merx/internal/service/report/interfaces"
	"merx/internal/zookeeper"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "shop-service"

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	// 1. MySQL，所有服务共享一个连接池
	gormDB, err := db.Open(db.Options{
		Host:     cfg.Infra.Mysql.Host,
		Port:     cfg.Infra.Mysql.Port,
		User:     cfg.Infra.Mysql.User,
		Password: cfg.Infra.Mysql.Password,
		Database: cfg.Infra.Mysql.Database,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect mysql")
	}

	// 2. 仓储
	productRepo := cataloginfra.NewGormProductRepository(gormDB)
	couponRepo := promoinfra.NewGormCouponRepository(gormDB)
	orderRepo := orderinfra.NewGormOrderRepository(gormDB)
	analyticsRepo := reportinfra.NewGormAnalyticsRepository(gormDB)

	// 3. Redis 快速路径，仅在配置了热点商品时启用
	var fastPath catalogapp.HotPathLedger
	var redisClient *redis.Client
	if hot := cfg.App.FeatureFlags.HotProducts; len(hot) > 0 {
		redisClient, err = redis.NewClient(cfg.Infra.Redis.Addr)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		ledger, err := cataloginfra.NewRedisStockLedger(redisClient, productRepo)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to init redis stock ledger")
		}
		fastPath = ledger
	}

	// 4. Kafka 事件发布（可通过 feature flag 关闭）
	var publisher *orderinfra.KafkaEventPublisher
	if cfg.App.FeatureFlags.EnableStockEvents && len(cfg.Infra.Kafka.Brokers) > 0 {
		writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.EventsTopic)
		publisher = orderinfra.NewKafkaEventPublisher(writer)
	}

	// 5. Zookeeper，用于审计扫描的分布式锁
	var zkConn *zookeeper.Conn
	if servers := cfg.Infra.Zookeeper.Servers; len(servers) > 0 {
		zkConn, err = zookeeper.Connect(servers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("zookeeper unavailable, stock audit runs without distributed lock")
		}
	}

	// 6. 应用服务
	stockService := catalogapp.NewStockService(productRepo, fastPath, cfg.App.FeatureFlags.HotProducts, tracer)
	if err := stockService.PrimeHotProducts(context.Background()); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to prime hot product counters")
	}

	scopeEvaluator, err := rule.NewCELScopeEvaluator()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to compile coupon scope rule")
	}
	promotionService := promoapp.NewPromotionService(couponRepo, scopeEvaluator, tracer)

	userDirectory := adapter.NewUserHTTPAdapter(httpclient.NewClient(tracer), cfg.Infra.UserService.BaseURL)
	orderService := orderapp.NewOrderApplicationService(
		orderRepo,
		adapter.NewInventoryAdapter(stockService),
		adapter.NewPromotionAdapter(promotionService),
		userDirectory,
		eventPublisherOrNil(publisher),
		tracer,
	)
	reportService := reportapp.NewReportService(analyticsRepo, tracer)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			orderifaces.NewOrderHandler(orderService).RegisterRoutes(appCtx.Mux)
			promoifaces.NewCouponHandler(promotionService).RegisterRoutes(appCtx.Mux)
			catalogifaces.NewStockHandler(stockService, zkConn, alerterOrNil(publisher)).RegisterRoutes(appCtx.Mux)
			reportifaces.NewReportHandler(reportService).RegisterRoutes(appCtx.Mux)

			appCtx.Mux.Handle("GET /metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
			})
		},
		OnShutdown: func(ctx context.Context) {
			if publisher != nil {
				if err := publisher.Close(); err != nil {
					logger.Logger.Error().Err(err).Msg("error closing kafka writer")
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Logger.Error().Err(err).Msg("error closing redis client")
				}
			}
			if zkConn != nil {
				zkConn.Close()
			}
		},
	})
}

// eventPublisherOrNil 避免把携带 nil 指针的接口传给订单服务。
func eventPublisherOrNil(p *orderinfra.KafkaEventPublisher) orderport.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func alerterOrNil(p *orderinfra.KafkaEventPublisher) catalogapp.Alerter {
	if p == nil {
		return nil
	}
	return p
}
