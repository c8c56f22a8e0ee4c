package saga

import (
	"context"

	"merx/internal/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReserveHandler 负责库存预占步骤。
// 逐条目条件扣减，任何一条失败就让整个事务失败，
// 已扣减的条目由补偿栈补回。
type ReserveHandler struct {
	NextHandler
}

func (h *ReserveHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ReserveStock")
	defer span.End()

	for _, item := range orderCtx.Draft.Items {
		if err := orderCtx.Inventory.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stock reservation failed")
			span.SetAttributes(attribute.String("failed.product_id", item.ProductID))
			return err
		}

		// 本条目已扣减成功，注册对应的补回动作
		productID, quantity := item.ProductID, item.Quantity
		orderCtx.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := orderCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseStock")
			defer compSpan.End()
			compSpan.SetAttributes(attribute.String("product_id", productID))
			if err := orderCtx.Inventory.Release(compCtx, productID, quantity); err != nil {
				compSpan.RecordError(err)
				logger.Ctx(compCtx).Error().
					Str("product_id", productID).
					Int("quantity", quantity).
					Err(err).
					Msg("failed to release reserved stock, manual intervention required")
			}
		})
	}

	span.AddEvent("all items reserved")
	return h.executeNext(orderCtx)
}
