package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewPubSubWithClient(client), nil
}

// NewPubSubWithClient 使用已有客户端创建 PubSub
func NewPubSubWithClient(client *redis.Client) *PubSub {
	return &PubSub{client: client}
}

// 询价完成状态
const (
	RateStatusQuoted = "QUOTED"
	RateStatusFailed = "FAILED"
)

// RateNotification 询价完成通知消息
type RateNotification struct {
	RequestID     string  `json:"request_id"`
	ID            string  `json:"id,omitempty"`
	Status        string  `json:"status"` // QUOTED/FAILED
	SuccessCount  int     `json:"success_count"`
	FailedCount   int     `json:"failed_count"`
	RecommendedID string  `json:"recommended_carrier_id,omitempty"`
	CheapestTotal float64 `json:"cheapest_total,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}

// PublishRateComplete 发布询价完成通知
func (p *PubSub) PublishRateComplete(
	ctx context.Context,
	channel string,
	notification *RateNotification,
) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅 Redis 频道
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}

// Ping 健康检查
func (p *PubSub) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}

// RateWatch 等待指定请求的询价完成通知
type RateWatch struct {
	sub       *redis.PubSub
	requestID string
}

// WatchRateComplete 订阅完成通知频道（需在投递任务之前调用，避免漏掉通知）
func (p *PubSub) WatchRateComplete(ctx context.Context, channel, requestID string) (*RateWatch, error) {
	sub := p.client.Subscribe(ctx, channel)

	// 等待订阅确认
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", channel, err)
	}

	return &RateWatch{sub: sub, requestID: requestID}, nil
}

// Wait 等待通知，超时返回 context.DeadlineExceeded
// 其他请求的通知直接跳过
func (w *RateWatch) Wait(ctx context.Context, timeout time.Duration) (*RateNotification, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := w.sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("subscription closed")
			}
			var n RateNotification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				continue
			}
			if n.RequestID == w.requestID {
				return &n, nil
			}
		case <-timeoutCtx.Done():
			return nil, timeoutCtx.Err()
		}
	}
}

// Close 取消订阅
func (w *RateWatch) Close() error {
	return w.sub.Close()
}
