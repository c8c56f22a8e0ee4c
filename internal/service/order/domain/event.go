// internal/service/order/domain/event.go
package domain

import "time"

// OrderCommitted 在下单事务提交成功后发布。
type OrderCommitted struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount float64   `json:"totalAmount"`
	CouponCode  string    `json:"couponCode,omitempty"`
	CommittedAt time.Time `json:"committedAt"`
}

// StockChanged 描述一次库存变动（下单扣减为负，取消补回为正）。
// 提交成功后逐条目发布，外部的推送层据此向订阅者广播。
type StockChanged struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
	OrderID   string `json:"orderId"`
}
