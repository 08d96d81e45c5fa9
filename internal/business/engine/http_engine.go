package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"oip/ratesync/internal/business/rating"
)

// 默认 HTTP 调用超时
const defaultHTTPTimeout = 10 * time.Second

// HTTPConfig 远程费率引擎配置
type HTTPConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// HTTPEngine 通过 HTTP 调用远程费率引擎
// POST {base_url}/rates，请求体 {carrier_id, shipment}，响应体为 rating.EngineResponse
type HTTPEngine struct {
	cfg    HTTPConfig
	client *http.Client
}

var _ rating.Engine = (*HTTPEngine)(nil)

// rateRequest 请求体
type rateRequest struct {
	CarrierID string                 `json:"carrier_id"`
	Shipment  rating.ShipmentRequest `json:"shipment"`
}

// NewHTTPEngine 创建 HTTP 引擎
func NewHTTPEngine(cfg HTTPConfig) (*HTTPEngine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("engine %s: base_url is required", cfg.Name)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.Name == "" {
		cfg.Name = "http"
	}

	return &HTTPEngine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name 引擎名称
func (e *HTTPEngine) Name() string {
	return e.cfg.Name
}

// Rate 询价
// 非 2xx 响应视为调用错误；2xx 且 success=false 视为承运商不适用
func (e *HTTPEngine) Rate(ctx context.Context, carrierID string, req rating.ShipmentRequest) (*rating.EngineResponse, error) {
	// 1. 序列化请求
	body, err := json.Marshal(rateRequest{CarrierID: carrierID, Shipment: req})
	if err != nil {
		return nil, fmt.Errorf("marshal rate request: %w", err)
	}

	// 2. 构造 HTTP 请求
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	// 3. 发送
	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, statusError(httpResp)
	}

	// 4. 解析响应
	var resp rating.EngineResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}

	return &resp, nil
}

// statusError 非 2xx 响应转换为错误，优先使用响应体中的 error 字段
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body.Error)
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
}
