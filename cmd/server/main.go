package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/warehouse/internal/adapter/handler"
	"github.com/rl1809/warehouse/internal/adapter/messaging"
	"github.com/rl1809/warehouse/internal/adapter/notify"
	"github.com/rl1809/warehouse/internal/adapter/remote"
	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/observability"
	"github.com/rl1809/warehouse/internal/port"
)

const healthRefreshInterval = 2 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	shutdownLogs, err := observability.SetupLogExport(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to set up log export", zap.Error(err))
	}
	if cfg.Telemetry.Endpoint != "" {
		logger = observability.WithLogExport(logger)
	}

	// Remote inventory
	client := remote.NewClient(cfg.API.URL, remote.WithTimeout(cfg.API.Timeout))

	// Sale guard: shared through Redis when configured
	var guard port.SaleGuard = service.NewLocalSaleGuard()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: 10,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		guard = storage.NewRedisSaleGuard(rdb, cfg.Redis.GuardKey, uuid.New().String(), cfg.Redis.GuardTTL)
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Incident log: MySQL when configured
	var incidents port.IncidentRepository = storage.NewMemoryIncidentRepository()
	var db *sql.DB
	if cfg.MySQL.DSN != "" {
		db, err = sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			logger.Fatal("failed to connect mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		repo := storage.NewMySQLIncidentRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate incident table", zap.Error(err))
		}
		incidents = repo
		logger.Info("connected to mysql")
	}

	// Sale events: Kafka when configured
	var events port.EventPublisher = messaging.NopPublisher{}
	var publisher *messaging.KafkaPublisher
	if cfg.Kafka.Broker != "" {
		publisher = messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka.Broker, cfg.Kafka.Topic))
		events = publisher
		logger.Info("publishing sale events", zap.String("broker", cfg.Kafka.Broker), zap.String("topic", cfg.Kafka.Topic))
	}

	// Services
	notes := notify.NewRecorder(cfg.Server.NotificationBuffer, logger)
	articles := service.NewArticleService(client, notes, logger)
	products := service.NewProductService(client, articles, logger)
	sales := service.NewSaleCoordinator(service.SaleCoordinatorDeps{
		Client:    client,
		Articles:  articles,
		Products:  products,
		Guard:     guard,
		Notifier:  notes,
		Incidents: incidents,
		Events:    events,
		Logger:    logger,
	})
	warehouse := service.NewWarehouse(articles, products, sales, logger)

	if err := warehouse.Load(ctx); err != nil {
		logger.Warn("initial load incomplete, retry through POST /api/load", zap.Error(err))
	}

	// gRPC health
	grpcServer := grpc.NewServer()
	healthHandler := handler.NewGRPCHealth(warehouse, config.ServiceName)
	healthHandler.Register(grpcServer)
	go healthHandler.Run(ctx, healthRefreshInterval)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP console
	httpHandler := handler.NewHTTPHandler(warehouse, notes, incidents, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: otelhttp.NewHandler(httpHandler.Routes(), "warehouse.http"),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close kafka writer", zap.Error(err))
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", zap.Error(err))
	}
	logger.Info("connections closed")
	if err := shutdownLogs(shutdownCtx); err != nil {
		logger.Error("failed to flush logs", zap.Error(err))
	}
}
