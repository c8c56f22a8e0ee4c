package saga

import (
	"merx/internal/service/order/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ValidateHandler 负责校验条目并截取商品快照。
// 走到这一步之后，订单上的名称与单价就与商品目录解耦了。
type ValidateHandler struct {
	NextHandler
}

func (h *ValidateHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ValidateItems")
	defer span.End()

	if len(orderCtx.Requested) == 0 {
		span.SetStatus(codes.Error, "empty order")
		return domain.ErrEmptyOrder
	}

	categorySet := map[string]struct{}{}
	for _, req := range orderCtx.Requested {
		if req.Quantity < 1 {
			span.SetStatus(codes.Error, "invalid quantity")
			return domain.ErrInvalidQuantity
		}

		// 1. 查商品快照，拿到此刻的名称、单价和分类
		snapshot, err := orderCtx.Inventory.Lookup(ctx, req.ProductID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "product lookup failed")
			return err
		}
		if !snapshot.IsActive {
			span.SetStatus(codes.Error, "product inactive")
			return domain.ErrProductNotFound
		}

		// 2. 以快照价格落条目
		if err := orderCtx.Draft.AddItem(snapshot.ProductID, snapshot.Name, req.Quantity, snapshot.UnitPrice); err != nil {
			return err
		}
		if snapshot.Category != "" {
			categorySet[snapshot.Category] = struct{}{}
		}
	}

	orderCtx.Subtotal = orderCtx.Draft.Subtotal()
	for category := range categorySet {
		orderCtx.CartCategories = append(orderCtx.CartCategories, category)
	}

	span.SetAttributes(
		attribute.Int("order.items", len(orderCtx.Draft.Items)),
		attribute.Float64("order.subtotal", orderCtx.Subtotal),
	)
	return h.executeNext(orderCtx)
}
