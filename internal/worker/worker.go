package worker

import (
	"context"
	"fmt"
	"sync"

	"oip/ratesync/internal/framework"
	"oip/ratesync/pkg/config"
	"oip/ratesync/pkg/lmstfyx"
	"oip/ratesync/pkg/logger"
)

// Worker 接口
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance 一个询价队列的 Subscriber + Processor 组合
type WorkerInstance struct {
	ctx        context.Context
	name       string
	queue      string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	shutdownCh chan struct{}
	stopOnce   sync.Once
	logger     logger.Logger
}

// NewWorkerInstance 按 worker 配置创建实例，proc 为 domains.GetProcess 返回的询价处理函数
func NewWorkerInstance(
	ctx context.Context,
	wc config.WorkerConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) (Worker, error) {
	if wc.QueueName == "" {
		return nil, fmt.Errorf("worker %s: queue_name is required", wc.Name)
	}
	if source == nil || proc == nil {
		return nil, fmt.Errorf("worker %s: message source and proc are required", wc.Name)
	}

	subCfg := framework.NewSubscriberConfig(wc)
	procCfg := framework.NewProcessorConfig(wc)

	name := wc.Name
	if name == "" {
		name = wc.QueueName
	}

	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		queue:      wc.QueueName,
		subscriber: framework.NewSubscriber(subCfg, source, log),
		processor:  framework.NewProcessor(procCfg, source, proc, log),
		inputChan:  make(chan *framework.Message, procCfg.BufferSize),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 先启动 Processor 再启动 Subscriber，阻塞到 Shutdown 完成
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started on queue %s", w.name, w.queue)

	_ = w.processor.Start(w.ctx, w.inputChan)
	_ = w.subscriber.Start(w.ctx, w.inputChan)

	<-w.shutdownCh
}

// Shutdown 优雅退出：先停拉取，再排空 inputChan 中已拉到的任务
func (w *WorkerInstance) Shutdown() {
	w.stopOnce.Do(func() {
		w.logger.Infof(w.ctx, "[Worker] %s shutting down", w.name)

		// 1. 停止拉取，等待拉取协程退出后 inputChan 不再有写入
		w.subscriber.Stop()
		w.subscriber.Wait()

		// 2. Processor 进入 Drain 模式，处理完剩余任务
		w.processor.SignalShutdown()
		w.processor.Wait()

		close(w.shutdownCh)
		w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
	})
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}
