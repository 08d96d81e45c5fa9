package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"oip/ratesync/internal/business/engine"
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/server/handlers/rate"
	"oip/ratesync/internal/server/routers"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/infra/mysql"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/lmstfy"
	"oip/ratesync/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// 3. 初始化应用
	handler, cleanup, err := initializeApp(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	gin.SetMode(cfg.Server.Mode)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: routers.SetupRoutes(handler, zapLogger),
	}

	// 4. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 5. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server)
	case err := <-serverErrChan:
		log.Printf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}

// initializeApp 组装依赖：费率引擎、承运商目录、异步任务投递、完成通知
func initializeApp(cfg *config.Config, zapLogger logger.Logger) (*rate.RateHandler, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, closeFn := range closers {
			_ = closeFn()
		}
	}

	primary, legacy, err := engine.NewPair(cfg.Engines)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create rating engines: %w", err)
	}
	service := rating.NewService(primary, legacy, zapLogger)

	var catalog rating.CarrierCatalog = engine.NewStaticCatalog(cfg.Rating.Carriers)
	if cfg.MySQL.DSN != "" {
		dao, err := mysql.NewCarrierDAO(cfg.MySQL.DSN)
		if err != nil {
			return nil, cleanup, fmt.Errorf("create carrier catalog: %w", err)
		}
		closers = append(closers, dao.Close)
		catalog = dao
	}

	var jobs rate.JobPublisher
	if cfg.Lmstfy.Host != "" && cfg.Rating.JobQueue != "" {
		client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
		if err != nil {
			return nil, cleanup, fmt.Errorf("create lmstfy client: %w", err)
		}
		jobs = client
	}

	var watcher rate.CompletionWatcher
	if cfg.Redis.Addr != "" {
		ps, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, cleanup, fmt.Errorf("create redis pubsub: %w", err)
		}
		closers = append(closers, ps.Close)
		watcher = ps
	}

	handler := rate.NewRateHandler(service, catalog, jobs, watcher, rate.Options{
		DefaultTimeout: cfg.Rating.Timeout,
		JobQueue:       cfg.Rating.JobQueue,
		CallbackQueue:  cfg.Rating.CallbackQueue,
		NotifyChannel:  cfg.Redis.Channel,
	}, zapLogger)

	return handler, cleanup, nil
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}
}
