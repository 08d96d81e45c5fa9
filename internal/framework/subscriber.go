package framework

import (
	"context"
	"sync"
	"time"
)

// Subscriber 多协程从询价队列拉取任务，写入 inputChan
type Subscriber struct {
	cfg    *SubscriberConfig
	source MessageSource
	logger Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, logger Logger) *Subscriber {
	return &Subscriber{cfg: cfg, source: source, logger: logger}
}

// Start 启动 Concurrency 个拉取协程，立即返回
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *Message) error {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	s.logger.Infof(ctx, "[Subscriber] queue=%s pullers=%d timeout=%v ttr=%v",
		s.cfg.QueueName, s.cfg.Concurrency, s.cfg.Timeout, s.cfg.TTR)

	for i := 0; i < s.cfg.Concurrency; i++ {
		s.wg.Add(1)
		go s.pull(ctx, i, inputChan)
	}
	return nil
}

// Stop 停止拉取，已在途的 Consume 调用返回后协程退出
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] queue=%s stopping", s.cfg.QueueName)
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait 阻塞到所有拉取协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] queue=%s all pullers exited", s.cfg.QueueName)
}

func (s *Subscriber) pull(ctx context.Context, id int, inputChan chan<- *Message) {
	defer s.wg.Done()
	defer s.logger.Infof(context.Background(), "[Subscriber-%d] exited", id)

	for ctx.Err() == nil {
		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			// 队列抖动不退出，退避后重试
			consumeErrorsTotal.WithLabelValues(s.cfg.QueueName).Inc()
			s.logger.Warnf(ctx, "[Subscriber-%d] consume failed, backoff %v: %v", id, s.cfg.ErrorBackoff, err)
			if !sleepCtx(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}
		if msg == nil {
			continue
		}
		if msg.ReceivedAt.IsZero() {
			msg.ReceivedAt = time.Now()
		}

		select {
		case inputChan <- msg:
			s.logger.Debugf(ctx, "[Subscriber-%d] job %s queued", id, msg.ID)
		case <-ctx.Done():
			// 未 ACK，TTR 到期后 lmstfy 会重新投递
			s.logger.Warnf(ctx, "[Subscriber-%d] shutdown, job %s left for redelivery", id, msg.ID)
			return
		}

		if !sleepCtx(ctx, s.cfg.Rate) {
			return
		}
	}
}

// sleepCtx 等待 d，ctx 先结束时返回 false
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
