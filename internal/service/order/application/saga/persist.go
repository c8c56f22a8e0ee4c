package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PersistHandler 是链上最后一步：结算总价并落库。
// 落库失败会触发前面所有步骤的补偿。
type PersistHandler struct {
	NextHandler
}

func (h *PersistHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.PersistOrder")
	defer span.End()

	orderCtx.Draft.Finalize()
	span.SetAttributes(
		attribute.String("order.id", orderCtx.Draft.ID),
		attribute.Float64("order.total_amount", orderCtx.Draft.TotalAmount),
	)

	if err := orderCtx.Orders.Create(ctx, orderCtx.Draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order persistence failed")
		return err
	}

	span.AddEvent("order persisted")
	return h.executeNext(orderCtx)
}
