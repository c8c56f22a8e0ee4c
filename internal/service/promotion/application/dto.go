// internal/service/promotion/application/dto.go
package application

import (
	"time"

	"merx/internal/service/promotion/domain"
)

// CouponView 是优惠券对外暴露的形态，字段名与存储形态保持一致。
type CouponView struct {
	ID                   string    `json:"id"`
	Code                 string    `json:"code"`
	Description          string    `json:"description,omitempty"`
	DiscountType         string    `json:"discountType"`
	DiscountValue        float64   `json:"discountValue"`
	MinOrderAmount       float64   `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount    float64   `json:"maxDiscountAmount,omitempty"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	UsageLimit           int       `json:"usageLimit"`
	UsedCount            int       `json:"usedCount"`
	IsActive             bool      `json:"isActive"`
	ApplicableCategories []string  `json:"applicableCategories,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// ValidateCouponResult 是校验端点（只读试算）的返回。
type ValidateCouponResult struct {
	Coupon   CouponView `json:"coupon"`
	Discount float64    `json:"discount"`
}

// Redemption 是下单路径一次成功核销的结果快照。
type Redemption struct {
	CouponID string
	Code     string
	Discount float64
}

// UpsertCouponRequest 是创建/更新优惠券的入参。
type UpsertCouponRequest struct {
	Code                 string    `json:"code"`
	Description          string    `json:"description"`
	DiscountType         string    `json:"discountType"`
	DiscountValue        float64   `json:"discountValue"`
	MinOrderAmount       float64   `json:"minOrderAmount"`
	MaxDiscountAmount    float64   `json:"maxDiscountAmount"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	UsageLimit           int       `json:"usageLimit"`
	IsActive             *bool     `json:"isActive"`
	ApplicableCategories []string  `json:"applicableCategories"`
}

func toCouponView(c *domain.Coupon) CouponView {
	return CouponView{
		ID:                   c.ID,
		Code:                 c.Code,
		Description:          c.Description,
		DiscountType:         string(c.DiscountType),
		DiscountValue:        c.DiscountValue,
		MinOrderAmount:       c.MinOrderAmount,
		MaxDiscountAmount:    c.MaxDiscountAmount,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		UsageLimit:           c.UsageLimit,
		UsedCount:            c.UsedCount,
		IsActive:             c.IsActive,
		ApplicableCategories: c.ApplicableCategories,
		CreatedAt:            c.CreatedAt,
	}
}
