// internal/service/order/application/dto.go
package application

import (
	"time"

	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"
)

// CreateOrderRequest 是下单请求体。UserID 由网关注入的认证头填充。
type CreateOrderRequest struct {
	UserID          string             `json:"-"`
	Items           []CreateOrderItem  `json:"items"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	CouponCode      string             `json:"couponCode,omitempty"`
}

// CreateOrderItem 是下单请求中的一行条目。
type CreateOrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateStatusRequest 是状态流转请求体。
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemView 是条目的对外视图，价格与名称都是下单时的快照。
type OrderItemView struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderView 是订单的对外视图。User 字段是尽力而为的展示信息，
// 用户服务不可用时为空，不影响订单本身。
type OrderView struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	User            *port.UserInfo         `json:"user,omitempty"`
	Items           []OrderItemView        `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress domain.Address         `json:"shippingAddress"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"paymentStatus"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Coupon          *domain.CouponSnapshot `json:"coupon,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func toOrderView(order *domain.Order) *OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &OrderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   string(order.PaymentMethod),
		Coupon:          order.Coupon,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toOrderViews(orders []*domain.Order) []*OrderView {
	views := make([]*OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toOrderView(order))
	}
	return views
}
