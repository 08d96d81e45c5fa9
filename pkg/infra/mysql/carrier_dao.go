package mysql

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"oip/ratesync/internal/business/rating"
)

// CarrierDAO 承运商目录数据访问对象
type CarrierDAO struct {
	db *gorm.DB
}

var _ rating.CarrierCatalog = (*CarrierDAO)(nil)

// NewCarrierDAO 创建 CarrierDAO 实例
func NewCarrierDAO(dsn string) (*CarrierDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewCarrierDAOWithDB(db), nil
}

// NewCarrierDAOWithDB 使用已有连接创建 CarrierDAO
func NewCarrierDAOWithDB(db *gorm.DB) *CarrierDAO {
	return &CarrierDAO{db: db}
}

// EligibleCarriers 返回启用且支持该运输类型的承运商 id（按优先级）
func (dao *CarrierDAO) EligibleCarriers(ctx context.Context, shipmentType rating.ShipmentType) ([]string, error) {
	var carriers []Carrier
	result := dao.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("priority DESC").
		Order("id").
		Find(&carriers)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list carriers: %w", result.Error)
	}

	ids := make([]string, 0, len(carriers))
	for i := range carriers {
		if carriers[i].Supports(string(shipmentType)) {
			ids = append(ids, carriers[i].ID)
		}
	}
	return ids, nil
}

// GetCarrierByID 根据 id 获取承运商
func (dao *CarrierDAO) GetCarrierByID(ctx context.Context, id string) (*Carrier, error) {
	var carrier Carrier
	result := dao.db.WithContext(ctx).Where("id = ?", id).First(&carrier)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get carrier: %w", result.Error)
	}
	return &carrier, nil
}

// Close 关闭数据库连接
func (dao *CarrierDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
