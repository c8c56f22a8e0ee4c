// internal/service/catalog/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"merx/internal/service/catalog/domain"
)

// ProductModel 对应数据库中的 products 表。
type ProductModel struct {
	ID                string  `gorm:"primaryKey;size:64"`
	Name              string  `gorm:"size:100;not null"`
	Description       string  `gorm:"type:text"`
	SKU               string  `gorm:"uniqueIndex;size:64;not null"`
	Price             float64 `gorm:"type:decimal(10,2);not null"`
	Category          string  `gorm:"size:50;index"`
	Stock             int     `gorm:"not null;default:0"`
	LowStockThreshold int     `gorm:"not null;default:10"`
	IsActive          bool    `gorm:"not null;default:true"`
	CreatedAt         time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ProductModel) TableName() string {
	return "products"
}

func toDomainProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		SKU:               m.SKU,
		Price:             m.Price,
		Category:          m.Category,
		Stock:             m.Stock,
		LowStockThreshold: m.LowStockThreshold,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
	}
}
