package saga

import (
	"context"
	"errors"

	"merx/internal/pkg/logger"
	"merx/internal/service/order/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DiscountHandler 负责券的核销步骤。
// 业务上不可用的券（不存在、失效、门槛不够、不适用）静默降级：
// 订单按原价继续走；只有基础设施错误才让整个事务失败。
type DiscountHandler struct {
	NextHandler
}

func (h *DiscountHandler) Handle(orderCtx *OrderContext) error {
	if orderCtx.CouponCode == "" {
		return h.executeNext(orderCtx)
	}

	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.RedeemCoupon")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.code", orderCtx.CouponCode))

	redemption, err := orderCtx.Coupons.Redeem(ctx, orderCtx.CouponCode, orderCtx.Subtotal, orderCtx.CartCategories)
	if err != nil {
		if errors.Is(err, domain.ErrCouponRejected) {
			span.AddEvent("coupon rejected, proceeding at full price")
			logger.Ctx(ctx).Warn().
				Str("coupon_code", orderCtx.CouponCode).
				Err(err).
				Msg("coupon not applicable, order continues without discount")
			return h.executeNext(orderCtx)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "coupon redemption failed")
		return err
	}

	// 核销成功即占用了一次额度，失败路径必须退回
	orderCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := orderCtx.Tracer.Start(compCtx, "saga.compensation.CancelRedemption")
		defer compSpan.End()
		if err := orderCtx.Coupons.Cancel(compCtx, redemption); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().
				Str("coupon_code", redemption.Code).
				Err(err).
				Msg("failed to release coupon usage, manual intervention required")
		}
	})

	orderCtx.Redemption = redemption
	orderCtx.Draft.ApplyCoupon(redemption.Code, redemption.Discount)

	span.SetAttributes(attribute.Float64("coupon.discount", redemption.Discount))
	span.AddEvent("coupon redeemed")
	return h.executeNext(orderCtx)
}
