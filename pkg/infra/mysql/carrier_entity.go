package mysql

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Carrier 承运商目录实体
type Carrier struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name          string         `gorm:"column:name;type:varchar(128);not null"`
	ShipmentTypes datatypes.JSON `gorm:"column:shipment_types;type:json"` // 例如 ["courier","freight"]，空表示不限
	Enabled       bool           `gorm:"column:enabled;not null;default:true;index:idx_enabled_priority"`
	Priority      int            `gorm:"column:priority;not null;default:0;index:idx_enabled_priority"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Carrier) TableName() string {
	return "carriers"
}

// Supports 是否支持该运输类型
func (c *Carrier) Supports(shipmentType string) bool {
	if len(c.ShipmentTypes) == 0 || shipmentType == "" {
		return true
	}

	var types []string
	if err := json.Unmarshal(c.ShipmentTypes, &types); err != nil {
		return false
	}
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == shipmentType {
			return true
		}
	}
	return false
}
