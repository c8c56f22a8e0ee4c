// internal/service/promotion/infrastructure/gorm_model.go
package infrastructure

import (
	"time"
)

// CouponModel 对应数据库中的 coupons 表。
type CouponModel struct {
	ID                string  `gorm:"primaryKey;size:64"`
	Code              string  `gorm:"uniqueIndex;size:64;not null"`
	Description       string  `gorm:"size:500"`
	DiscountType      string  `gorm:"size:16;not null"`
	DiscountValue     float64 `gorm:"type:decimal(10,2);not null"`
	MinOrderAmount    float64 `gorm:"type:decimal(10,2);not null;default:0"`
	MaxDiscountAmount float64 `gorm:"type:decimal(10,2);not null;default:0"`
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        int    `gorm:"not null;default:0"`
	UsedCount         int    `gorm:"not null;default:0"`
	IsActive          bool   `gorm:"not null;default:true"`
	ScopeCategories   string `gorm:"type:text"` // JSON 数组，为空表示全场可用
	CreatedAt         time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CouponModel) TableName() string {
	return "coupons"
}
