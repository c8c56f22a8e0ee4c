// internal/service/order/infrastructure/adapter/promotion_adapter.go
package adapter

import (
	"context"

	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"
	promoapp "merx/internal/service/promotion/application"
	promodomain "merx/internal/service/promotion/domain"

	"github.com/pkg/errors"
)

// PromotionAdapter 把优惠服务适配成订单侧的券核销端口。
// 业务性的拒绝（不存在、失效、门槛、范围、次数用尽）统一包装成
// ErrCouponRejected，下单链据此静默降级；基础设施错误原样上抛。
type PromotionAdapter struct {
	promotion *promoapp.PromotionService
}

func NewPromotionAdapter(promotion *promoapp.PromotionService) *PromotionAdapter {
	return &PromotionAdapter{promotion: promotion}
}

var _ port.CouponRedeemer = (*PromotionAdapter)(nil)

func (a *PromotionAdapter) Redeem(ctx context.Context, code string, subtotal float64, cartCategories []string) (*port.Redemption, error) {
	redemption, err := a.promotion.Redeem(ctx, code, subtotal, cartCategories)
	if err != nil {
		if isBusinessRejection(err) {
			return nil, errors.Wrap(domain.ErrCouponRejected, err.Error())
		}
		return nil, err
	}
	return &port.Redemption{
		CouponID: redemption.CouponID,
		Code:     redemption.Code,
		Discount: redemption.Discount,
	}, nil
}

func (a *PromotionAdapter) Cancel(ctx context.Context, redemption *port.Redemption) error {
	return a.promotion.CancelRedemption(ctx, redemption.CouponID)
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, promodomain.ErrCouponNotFound) ||
		errors.Is(err, promodomain.ErrCouponInvalid) ||
		errors.Is(err, promodomain.ErrMinimumNotMet) ||
		errors.Is(err, promodomain.ErrCouponNotApplicable) ||
		errors.Is(err, promodomain.ErrUsageLimitReached)
}
