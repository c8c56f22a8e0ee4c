// internal/service/promotion/infrastructure/mapper.go
package infrastructure

import (
	"encoding/json"

	"merx/internal/service/promotion/domain"
)

// ToDomainCoupon 将数据库模型转换为领域模型。
func ToDomainCoupon(m *CouponModel) *domain.Coupon {
	var categories []string
	if m.ScopeCategories != "" {
		// 损坏的 JSON 当作无作用范围处理，不让读取路径失败。
		_ = json.Unmarshal([]byte(m.ScopeCategories), &categories)
	}
	return &domain.Coupon{
		ID:                   m.ID,
		Code:                 m.Code,
		Description:          m.Description,
		DiscountType:         domain.DiscountType(m.DiscountType),
		DiscountValue:        m.DiscountValue,
		MinOrderAmount:       m.MinOrderAmount,
		MaxDiscountAmount:    m.MaxDiscountAmount,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		UsageLimit:           m.UsageLimit,
		UsedCount:            m.UsedCount,
		IsActive:             m.IsActive,
		ApplicableCategories: categories,
		CreatedAt:            m.CreatedAt,
	}
}

// ToCouponModel 将领域模型转换为数据库模型。
func ToCouponModel(c *domain.Coupon) (*CouponModel, error) {
	scope := ""
	if len(c.ApplicableCategories) > 0 {
		data, err := json.Marshal(c.ApplicableCategories)
		if err != nil {
			return nil, err
		}
		scope = string(data)
	}
	return &CouponModel{
		ID:                c.ID,
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      string(c.DiscountType),
		DiscountValue:     c.DiscountValue,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		UsageLimit:        c.UsageLimit,
		UsedCount:         c.UsedCount,
		IsActive:          c.IsActive,
		ScopeCategories:   scope,
		CreatedAt:         c.CreatedAt,
	}, nil
}
