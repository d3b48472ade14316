package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/order-lifecycle/internal/adapter/handler"
	"github.com/rl1809/order-lifecycle/internal/adapter/storage"
	"github.com/rl1809/order-lifecycle/internal/config"
	"github.com/rl1809/order-lifecycle/internal/core/domain"
	"github.com/rl1809/order-lifecycle/internal/core/service"
	"github.com/rl1809/order-lifecycle/internal/metrics"
	"github.com/rl1809/order-lifecycle/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	var idempotency port.IdempotencyStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		idempotency = storage.NewRedisAdapter(rdb, cfg.IdempotencyTTL)
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Initialize MySQL
	var db *sql.DB
	var archive port.OrderArchive
	queueSize := 0
	if cfg.ArchiveEnabled() {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			logger.Fatal("failed to connect mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(cfg.ArchiveWorkers * 2)
		db.SetMaxIdleConns(cfg.ArchiveWorkers)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare archive schema", zap.Error(err))
		}
		archive = mysqlAdapter
		queueSize = cfg.ArchiveQueueSize
		logger.Info("connected to mysql")
	}

	// Initialize service
	orderService := service.NewOrderService(storage.NewMemoryStore(), idempotency, queueSize, logger)

	// Start archive worker pool
	var wg sync.WaitGroup
	if archive != nil {
		for i := 0; i < cfg.ArchiveWorkers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				workerLoop(id, orderService.GetSnapshotQueue(), archive, logger)
			}(i)
		}
		logger.Info("started archive workers", zap.Int("count", cfg.ArchiveWorkers))
	}

	// Initialize gRPC health server
	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler()
	grpcHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "api")

	httpHandler := handler.NewHTTPHandler(orderService, cfg.MaxRequestBodySize, logger)
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.NewRouter(httpHandler, serverMetrics, logger, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	grpcHandler.SetServing(false)

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Close snapshot queue and wait for workers
	orderService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	// Close connections
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	logger.Info("connections closed")
}

func workerLoop(id int, queue <-chan domain.Order, archive port.OrderArchive, logger *zap.Logger) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := archive.SaveSnapshot(ctx, order); err != nil {
			logger.Error("failed to archive order snapshot",
				zap.Int("worker", id),
				zap.String("order_id", order.ID),
				zap.String("status", string(order.Status)),
				zap.Error(err),
			)
		} else {
			logger.Debug("archived order snapshot",
				zap.Int("worker", id),
				zap.String("order_id", order.ID),
				zap.String("status", string(order.Status)),
			)
		}

		cancel()
	}
}
