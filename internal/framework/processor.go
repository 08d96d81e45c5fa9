package framework

import (
	"context"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"oip/ratesync/pkg/lmstfyx"
)

// Processor 固定数量的协程消费 inputChan，调用询价处理函数并按结果 ACK
type Processor struct {
	cfg      *ProcessorConfig
	source   MessageSource
	proc     lmstfyx.Proc
	logger   Logger
	draining chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, source MessageSource, proc lmstfyx.Proc, logger Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		source:   source,
		proc:     proc,
		logger:   logger,
		draining: make(chan struct{}),
	}
}

// Start 启动 Concurrency 个处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) error {
	p.logger.Infof(ctx, "[Processor] handlers=%d timeout=%v", p.cfg.Concurrency, p.cfg.Timeout)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.run(ctx, i, inputChan)
	}
	return nil
}

// SignalShutdown 进入 Drain 模式，需在 Subscriber 全部退出后调用
func (p *Processor) SignalShutdown() {
	p.once.Do(func() {
		p.logger.Infof(context.Background(), "[Processor] draining")
		close(p.draining)
	})
}

// Wait 阻塞到所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] all handlers exited")
}

func (p *Processor) run(ctx context.Context, id int, inputChan <-chan *Message) {
	defer p.wg.Done()

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, id)
		case <-p.draining:
			n := p.drain(ctx, id, inputChan)
			p.logger.Infof(ctx, "[Processor-%d] drained %d jobs, exiting", id, n)
			return
		}
	}
}

// drain 非阻塞地处理完缓冲区中剩余的任务
func (p *Processor) drain(ctx context.Context, id int, inputChan <-chan *Message) int {
	n := 0
	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, id)
			n++
		default:
			return n
		}
	}
}

// process 处理单个消息
func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}

	startTime := time.Now()
	wait := msg.QueueWait(startTime)
	queueWait.WithLabelValues(msg.Queue).Observe(wait.Seconds())

	// 1. 单个任务的超时（未配置超时时只随父 Context 取消）
	var (
		procCtx context.Context
		cancel  context.CancelFunc
	)
	if p.cfg.Timeout > 0 {
		procCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
	} else {
		procCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// 2. worker_id 写入 ctx，日志自动带出
	procCtx = context.WithValue(procCtx, "worker_id", workerID)

	p.logger.Infof(procCtx, "[Processor-%d] job %s picked up after %v", workerID, msg.ID, wait)

	// 3. 调用询价处理函数
	resp := p.proc(procCtx, &client.Job{ID: msg.ID, Queue: msg.Queue, Data: msg.Data})
	if resp == nil {
		resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
	}

	// 4. 根据处理结果 ACK / 等待重投
	p.finish(procCtx, msg, resp, workerID)

	duration := time.Since(startTime)
	jobsTotal.WithLabelValues(msg.Queue, resp.Action.String()).Inc()
	jobDuration.WithLabelValues(msg.Queue).Observe(duration.Seconds())
	p.logger.Infof(procCtx, "[Processor-%d] job %s done, action: %s, duration: %v",
		workerID, msg.ID, resp.Action, duration)
}

// finish Success 与 Bury 都 ACK（失败结果已写入回调），Release 不 ACK，TTR 到期后由 lmstfy 重新投递
func (p *Processor) finish(ctx context.Context, msg *Message, resp *lmstfyx.JobResp, workerID int) {
	switch resp.Action {
	case lmstfyx.JobRespStatusSuccess, lmstfyx.JobRespStatusBury:
		if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
			p.logger.Errorf(ctx, "[Processor-%d] ack %s failed: %v", workerID, msg.ID, err)
		}
	case lmstfyx.JobRespStatusRelease:
		p.logger.Warnf(ctx, "[Processor-%d] job %s released for redelivery", workerID, msg.ID)
	}
}
