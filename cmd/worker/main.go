package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oip/ratesync/internal/worker"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/logger"
)

var (
	configPath  = flag.String("config", "./config/worker.yaml", "配置文件路径")
	metricsAddr = flag.String("metrics-addr", ":9102", "Prometheus 指标监听地址，为空不启动")
)

func main() {
	flag.Parse()

	log.Println("RATESYNC worker starting...")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	log.Printf("Config loaded: %s, env: %s, workers: %d\n", cfg.App.Name, cfg.App.Env, len(cfg.Workers))

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// 3. 指标端点
	metricsSrv := startMetrics(*metricsAddr)

	// 4. 创建并启动 Manager
	mgr, err := worker.NewManagerInstance(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()

	// 5. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, draining workers...", sig)

	// 6. 先排空 worker，再关闭指标端点
	mgr.Shutdown()
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}

	log.Println("RATESYNC worker exited")
}

// startMetrics 后台启动 /metrics，监听失败只记录日志
func startMetrics(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	log.Printf("Metrics listening on %s/metrics", addr)
	return srv
}
