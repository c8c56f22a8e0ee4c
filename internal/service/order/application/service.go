// internal/service/order/application/service.go
package application

import (
	"context"
	"errors"
	"time"

	"merx/internal/pkg/logger"
	"merx/internal/pkg/metrics"
	"merx/internal/service/order/application/saga"
	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderApplicationService 编排下单事务与订单查询。
type OrderApplicationService struct {
	orders    domain.OrderRepository
	inventory port.InventoryLedger
	coupons   port.CouponRedeemer
	users     port.UserDirectory
	publisher port.EventPublisher
	tracer    trace.Tracer
}

func NewOrderApplicationService(
	orders domain.OrderRepository,
	inventory port.InventoryLedger,
	coupons port.CouponRedeemer,
	users port.UserDirectory,
	publisher port.EventPublisher,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders:    orders,
		inventory: inventory,
		coupons:   coupons,
		users:     users,
		publisher: publisher,
		tracer:    tracer,
	}
}

// CreateOrder 执行完整的下单事务：
// 1. 校验条目并截取商品快照
// 2. 核销优惠券（业务拒绝则静默降级）
// 3. 逐条目条件扣减库存
// 4. 结算总价并落库
// 任何一步失败都会逆序执行已注册的补偿，保证全有或全无。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder")
	defer span.End()

	draft, err := domain.NewOrder(uuid.New().String(), req.UserID, req.ShippingAddress, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		span.SetStatus(codes.Error, "invalid order request")
		metrics.OrdersFailed.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", draft.ID),
		attribute.String("order.user_id", req.UserID),
		attribute.Int("order.requested_items", len(req.Items)),
	)

	requested := make([]saga.RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		requested = append(requested, saga.RequestedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	orderCtx := &saga.OrderContext{
		Ctx:        ctx,
		Tracer:     s.tracer,
		Draft:      draft,
		Requested:  requested,
		CouponCode: req.CouponCode,
		Inventory:  s.inventory,
		Coupons:    s.coupons,
		Orders:     s.orders,
	}

	// 组装责任链：校验 → 核销券 → 预占库存 → 落库
	validate := &saga.ValidateHandler{}
	validate.SetNext(&saga.DiscountHandler{}).
		SetNext(&saga.ReserveHandler{}).
		SetNext(&saga.PersistHandler{})

	if err := validate.Handle(orderCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order transaction failed")
		orderCtx.TriggerCompensation(ctx)
		s.recordFailure(err)
		return nil, err
	}

	s.recordSuccess(ctx, draft, orderCtx.Redemption)
	return toOrderView(draft), nil
}

// recordSuccess 上报指标并发布提交后事件，事件失败只记录不回滚。
func (s *OrderApplicationService) recordSuccess(ctx context.Context, order *domain.Order, redemption *port.Redemption) {
	metrics.OrdersCreated.Inc()
	metrics.OrderAmount.Observe(order.TotalAmount)
	if redemption != nil {
		metrics.CouponsRedeemed.Inc()
	}

	if s.publisher == nil {
		return
	}
	committed := domain.OrderCommitted{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		CommittedAt: time.Now(),
	}
	if order.Coupon != nil {
		committed.CouponCode = order.Coupon.Code
	}
	if err := s.publisher.Publish(ctx, order.ID, committed); err != nil {
		logger.Ctx(ctx).Error().Str("order_id", order.ID).Err(err).Msg("failed to publish order committed event")
	}
	for _, item := range order.Items {
		event := domain.StockChanged{ProductID: item.ProductID, Delta: -item.Quantity, OrderID: order.ID}
		if err := s.publisher.Publish(ctx, item.ProductID, event); err != nil {
			logger.Ctx(ctx).Error().Str("product_id", item.ProductID).Err(err).Msg("failed to publish stock changed event")
		}
	}
}

func (s *OrderApplicationService) recordFailure(err error) {
	if errors.Is(err, domain.ErrInsufficientStock) {
		metrics.StockRejections.Inc()
	}
	metrics.OrdersFailed.WithLabelValues(failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPaymentMethod):
		return "invalid_request"
	default:
		return "internal"
	}
}

// GetOrder 返回单个订单，只有属主或管理员可见。
// 用户展示信息尽力而为，用户服务不可用不影响返回。
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID, requesterID, requesterRole string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !order.CanBeViewedBy(requesterID, requesterRole) {
		span.SetStatus(codes.Error, "access denied")
		return nil, domain.ErrNotAuthorized
	}

	view := toOrderView(order)
	if s.users != nil {
		if user, err := s.users.GetUser(ctx, order.UserID); err != nil {
			logger.Ctx(ctx).Warn().Str("user_id", order.UserID).Err(err).Msg("user lookup failed, returning order without user info")
		} else {
			view.User = user
		}
	}
	return view, nil
}

// ListOrders 返回全部订单，管理端专用。
func (s *OrderApplicationService) ListOrders(ctx context.Context) ([]*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.ListOrders")
	defer span.End()

	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderViews(orders), nil
}

// ListUserOrders 返回当前用户自己的订单。
func (s *OrderApplicationService) ListUserOrders(ctx context.Context, userID string) ([]*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.ListUserOrders")
	defer span.End()
	span.SetAttributes(attribute.String("order.user_id", userID))

	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderViews(orders), nil
}

// UpdateOrderStatus 执行一次状态流转。
// 流转到 cancelled 时把已扣减的库存补回去，补回失败记录后继续，
// 取消本身不因此失败。
func (s *OrderApplicationService) UpdateOrderStatus(ctx context.Context, orderID string, next domain.Status) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.next_status", string(next)),
	)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := order.Transition(next); err != nil {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if next == domain.StatusCancelled {
		s.releaseStock(ctx, order)
	}
	return toOrderView(order), nil
}

func (s *OrderApplicationService) releaseStock(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if err := s.inventory.Release(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Ctx(ctx).Error().
				Str("order_id", order.ID).
				Str("product_id", item.ProductID).
				Err(err).
				Msg("failed to release stock on cancellation, manual intervention required")
			continue
		}
		if s.publisher != nil {
			event := domain.StockChanged{ProductID: item.ProductID, Delta: item.Quantity, OrderID: order.ID}
			if err := s.publisher.Publish(ctx, item.ProductID, event); err != nil {
				logger.Ctx(ctx).Error().Str("product_id", item.ProductID).Err(err).Msg("failed to publish stock changed event")
			}
		}
	}
}
