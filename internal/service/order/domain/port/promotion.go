// internal/service/order/domain/port/promotion.go
package port

import "context"

// Redemption 是一次成功核销的回执，补偿时凭它回退。
type Redemption struct {
	CouponID string
	Code     string
	Discount float64
}

// CouponRedeemer 是订单服务对券能力的依赖抽象。
// Redeem 会占用一次使用额度；Cancel 把额度退回去。
type CouponRedeemer interface {
	Redeem(ctx context.Context, code string, subtotal float64, cartCategories []string) (*Redemption, error)
	Cancel(ctx context.Context, redemption *Redemption) error
}
