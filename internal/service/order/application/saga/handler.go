package saga

import (
	"context"
	"sync"

	"merx/internal/pkg/logger"
	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"

	"go.opentelemetry.io/otel/trace"
)

// OrderContext 在下单事务的各步骤间传递状态。
// 所有外部依赖都是抽象出站端口，方便在测试中替换。
type OrderContext struct {
	Ctx    context.Context
	Tracer trace.Tracer

	// Draft 是正在组装的订单聚合，各步骤逐渐把它填满。
	Draft *domain.Order

	// 请求输入
	Requested      []RequestedItem
	CouponCode     string
	CartCategories []string

	// 中间产物
	Subtotal   float64
	Redemption *port.Redemption

	// 出站端口
	Inventory port.InventoryLedger
	Coupons   port.CouponRedeemer
	Orders    domain.OrderRepository

	// LIFO 补偿栈
	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// RequestedItem 是请求中的一行待下单条目。
type RequestedItem struct {
	ProductID string
	Quantity  int
}

// AddCompensation 把补偿函数压入栈顶，回滚时按注册的逆序执行。
func (c *OrderContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 逆序执行所有已注册的补偿。
func (c *OrderContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("order_id", c.Draft.ID).
		Int("compensations", len(c.compensations)).
		Msg("executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// Handler 是责任链上的一个步骤。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}
