package lmstfy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"oip/ratesync/internal/framework"
)

// 回调消息默认投递次数
const defaultTries = 3

// Client Lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
}

// NewClient 创建 Lmstfy 客户端
func NewClient(host string, port int, namespace string, token string) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("lmstfy host is required")
	}
	cli := client.NewLmstfyClient(host, port, namespace, token)
	return &Client{
		cli:       cli,
		namespace: namespace,
	}, nil
}

// Consume 消费消息（实现 MessageSource 接口）
// 拉到的消息在 ttr 内未 ACK 会被 lmstfy 重新投递
func (c *Client) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	timeoutSec := uint32(timeout.Seconds())
	ttrSec := uint32(ttr.Seconds())

	// lmstfy 参数顺序为 (queue, ttr, timeout)
	job, err := c.cli.Consume(queue, ttrSec, timeoutSec)
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}

	// 超时未拉到消息
	if job == nil {
		return nil, nil
	}

	return &framework.Message{
		ID:         job.ID,
		Queue:      job.Queue,
		Data:       job.Data,
		ReceivedAt: time.Now(),
	}, nil
}

// Ack 确认消息（实现 MessageSource 接口）
func (c *Client) Ack(queue string, jobID string) error {
	if apiErr := c.cli.Ack(queue, jobID); apiErr != nil {
		return fmt.Errorf("lmstfy ack failed: %w", apiErr)
	}
	return nil
}

// Publish 发布消息
// ttl=0 表示永不过期，delay=0 表示立即可用
func (c *Client) Publish(queue string, data []byte, ttl, delay uint32) error {
	if _, err := c.cli.Publish(queue, data, ttl, defaultTries, delay); err != nil {
		return fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return nil
}

// PublishJSON 序列化后发布
func (c *Client) PublishJSON(queue string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}
	return c.Publish(queue, data, 0, 0)
}
