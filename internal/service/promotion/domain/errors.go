// internal/service/promotion/domain/errors.go
package domain

import "errors"

var (
	// ErrCouponNotFound 券码不存在。
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponInvalid 券已停用、不在活动窗口内，或已达使用上限。
	ErrCouponInvalid = errors.New("coupon is not valid")

	// ErrMinimumNotMet 订单金额未达到券的最低消费门槛。
	ErrMinimumNotMet = errors.New("minimum order amount not met")

	// ErrCouponNotApplicable 购物车中没有券作用范围内的商品。
	ErrCouponNotApplicable = errors.New("coupon not applicable to cart")

	// ErrUsageLimitReached 并发核销时使用次数触顶，条件更新未命中。
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)
