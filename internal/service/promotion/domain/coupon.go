// internal/service/promotion/domain/coupon.go
package domain

import (
	"strings"
	"time"
)

// DiscountType 定义了优惠券的折扣方式。
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // 按小计的百分比折扣
	DiscountFixed      DiscountType = "fixed"      // 固定面额
)

// Coupon 是优惠券聚合根。
// code 全局唯一，统一以大写形式存储和比较。
type Coupon struct {
	ID                   string
	Code                 string
	Description          string
	DiscountType         DiscountType
	DiscountValue        float64
	MinOrderAmount       float64 // 0 表示无门槛
	MaxDiscountAmount    float64 // 0 表示不封顶，仅对百分比折扣生效
	StartDate            time.Time
	EndDate              time.Time
	UsageLimit           int // 0 表示不限次数
	UsedCount            int
	IsActive             bool
	ApplicableCategories []string // 为空表示全场可用
	CreatedAt            time.Time
}

// CanonicalCode 返回规范化（大写、去空白）后的券码。
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidAt 判断优惠券在给定时刻是否有效：
// 启用中、处于活动窗口内、且未达使用上限。
func (c *Coupon) IsValidAt(now time.Time) bool {
	return c.IsActive &&
		!now.Before(c.StartDate) &&
		!now.After(c.EndDate) &&
		(c.UsageLimit == 0 || c.UsedCount < c.UsageLimit)
}

// Discount 计算给定小计下的折扣金额，纯算术，不做有效性校验。
// 百分比折扣受 MaxDiscountAmount 封顶；
// 固定面额不与小计取小，面额大于小计时总价会变成负数。
func (c *Coupon) Discount(subtotal float64) float64 {
	if c.DiscountType == DiscountPercentage {
		discount := subtotal * c.DiscountValue / 100
		if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
			discount = c.MaxDiscountAmount
		}
		return discount
	}
	return c.DiscountValue
}

// Evaluate 是下单路径使用的完整评估：有效性、门槛、再算折扣。
func (c *Coupon) Evaluate(subtotal float64, now time.Time) (float64, error) {
	if !c.IsValidAt(now) {
		return 0, ErrCouponInvalid
	}
	if c.MinOrderAmount > 0 && subtotal < c.MinOrderAmount {
		return 0, ErrMinimumNotMet
	}
	return c.Discount(subtotal), nil
}
