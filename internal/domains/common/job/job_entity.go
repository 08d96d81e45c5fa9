package job

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionRateQuote 多承运商询价任务
const ActionRateQuote = "rate_quote"

// Job 标准 Job 结构
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload Job 负载
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData Job 数据
type JobPayloadData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（TraceID）
	OrgID      string `json:"org_id"`      // 组织 ID
	ActionType string `json:"action_type"` // 动作类型（路由键）
	ID         string `json:"id"`          // 业务 ID
	CreatedAt  int64  `json:"created_at,omitempty"`

	// 业务数据（由 Handler 按 ActionType 解析）
	Data json.RawMessage `json:"data"`

	// 扩展
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Meta 元数据
type Meta struct {
	RequestID  string // 请求 ID
	OrgID      string // 组织 ID
	ActionType string // 动作类型
	ID         string // 业务 ID
}

// NewJob 构造标准 Job（API 侧投递任务时使用）
func NewJob(meta Meta, data interface{}) (*Job, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job data failed: %w", err)
	}

	return &Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  meta.RequestID,
				OrgID:      meta.OrgID,
				ActionType: meta.ActionType,
				ID:         meta.ID,
				CreatedAt:  time.Now().Unix(),
				Data:       raw,
			},
		},
	}, nil
}
