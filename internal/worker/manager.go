package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"oip/ratesync/internal/business/engine"
	"oip/ratesync/internal/business/rating"
	"oip/ratesync/internal/domains"
	"oip/ratesync/internal/domains/common"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/infra/mysql"
	"oip/ratesync/pkg/infra/redis"
	"oip/ratesync/pkg/lmstfy"
	"oip/ratesync/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx           context.Context
	cfg           *config.Config
	lmstfyClient  *lmstfy.Client
	callbackQueue string
	deps          *common.Deps
	closers       []func() error
	workers       []Worker
	closing       *atomic.Bool
	shutdownCh    chan struct{}
	wg            sync.WaitGroup
	mu            sync.RWMutex
	logger        logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	var callbackQueue string
	if len(cfg.Workers) > 0 {
		callbackQueue = cfg.Workers[0].CallbackQueue
	}
	if callbackQueue == "" {
		return nil, fmt.Errorf("callback_queue is required in worker config")
	}

	m := &ManagerInstance{
		ctx:           ctx,
		cfg:           cfg,
		lmstfyClient:  lmstfyClient,
		callbackQueue: callbackQueue,
		closing:       atomic.NewBool(false),
		shutdownCh:    make(chan struct{}),
		workers:       make([]Worker, 0),
		logger:        log,
	}

	deps, err := m.buildDeps()
	if err != nil {
		m.closeResources()
		return nil, err
	}
	m.deps = deps

	log.Infof(ctx, "[Manager] Initialized with callback_queue: %s", callbackQueue)

	return m, nil
}

// buildDeps 组装 Handler 依赖：费率引擎、承运商目录、完成通知
func (m *ManagerInstance) buildDeps() (*common.Deps, error) {
	// 1. 主引擎 / 旧引擎
	primary, legacy, err := engine.NewPair(m.cfg.Engines)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating engines: %w", err)
	}

	deps := &common.Deps{
		Service:        rating.NewService(primary, legacy, m.logger),
		Callback:       m.lmstfyClient,
		CallbackQueue:  m.callbackQueue,
		DefaultTimeout: m.cfg.Rating.Timeout,
		Logger:         m.logger,
	}

	// 2. 承运商目录（MySQL 优先，否则使用固定目录）
	if m.cfg.MySQL.DSN != "" {
		dao, err := mysql.NewCarrierDAO(m.cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create carrier catalog: %w", err)
		}
		m.closers = append(m.closers, dao.Close)
		deps.Catalog = dao
	} else {
		deps.Catalog = engine.NewStaticCatalog(m.cfg.Rating.Carriers)
	}

	// 3. 完成通知（可选）
	if m.cfg.Redis.Addr != "" {
		ps, err := redis.NewPubSub(m.cfg.Redis.Addr, m.cfg.Redis.Password, m.cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis notifier: %w", err)
		}
		m.closers = append(m.closers, ps.Close)
		deps.Notifier = ps
		deps.NotifyChannel = m.cfg.Redis.Channel
	}

	m.logger.Infof(m.ctx, "[Manager] Engines ready: primary=%s, legacy=%s", primary.Name(), legacy.Name())
	return deps, nil
}

func (m *ManagerInstance) closeResources() {
	for _, closeFn := range m.closers {
		if err := closeFn(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close resource failed: %v", err)
		}
	}
	m.closers = nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 释放外部资源
		m.closeResources()

		// 4. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	// 遍历配置中的所有 Worker
	for _, workerCfg := range m.cfg.Workers {
		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg,
			m.lmstfyClient,
			domains.GetProcess(m.logger, m.deps),
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
