// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrEmptyOrder 订单至少要有一个条目。
	ErrEmptyOrder = errors.New("order must have at least one item")

	// ErrOrderNotFound 订单不存在。
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound 条目引用的商品不存在。
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock 库存不足以满足本次下单。
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity 条目数量必须为正。
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")

	// ErrInvalidPaymentMethod 不支持的支付方式。
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")

	// ErrNotAuthorized 请求者既不是订单属主也不是管理员。
	ErrNotAuthorized = errors.New("not authorized to access this order")

	// ErrInvalidTransition 状态机不允许的流转。
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrCouponRejected 标记一次业务上不可用的券（不存在/失效/不适用）。
	// 下单路径对它静默降级：订单按原价继续，不向调用方报错。
	ErrCouponRejected = errors.New("coupon rejected")
)
