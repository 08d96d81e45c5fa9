package engine

import (
	"context"

	"oip/ratesync/internal/business/rating"
)

// StaticCatalog 固定承运商目录（未配置 MySQL 时使用）
type StaticCatalog struct {
	carriers []string
}

var _ rating.CarrierCatalog = (*StaticCatalog)(nil)

// NewStaticCatalog 创建固定目录，carriers 为空时使用 Mock 表
func NewStaticCatalog(carriers []string) *StaticCatalog {
	return &StaticCatalog{carriers: carriers}
}

// EligibleCarriers 返回可询价承运商
// 配置了固定列表时原样返回（运输类型由引擎自行判断是否适用）
func (c *StaticCatalog) EligibleCarriers(_ context.Context, shipmentType rating.ShipmentType) ([]string, error) {
	if len(c.carriers) > 0 {
		out := make([]string, len(c.carriers))
		copy(out, c.carriers)
		return out, nil
	}
	return CarrierIDs(shipmentType), nil
}
