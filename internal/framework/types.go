package framework

import "time"

// Message 从队列拉到的一条询价任务
type Message struct {
	ID         string
	Queue      string
	Data       []byte
	ReceivedAt time.Time // Consume 返回的时间，用于统计在 inputChan 中的排队时长
}

// QueueWait 消息从拉取到开始处理的等待时长
func (m *Message) QueueWait(now time.Time) time.Duration {
	if m.ReceivedAt.IsZero() {
		return 0
	}
	return now.Sub(m.ReceivedAt)
}
