// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import "time"

// OrderModel 对应 orders 表。
// 收货地址打平成列，券快照以 code + discount 两列内联，
// code 为空表示该订单没有用券。
type OrderModel struct {
	ID             string  `gorm:"primaryKey;size:64"`
	UserID         string  `gorm:"size:64;index;not null"`
	TotalAmount    float64 `gorm:"not null"`
	ShipStreet     string  `gorm:"size:255"`
	ShipCity       string  `gorm:"size:128"`
	ShipState      string  `gorm:"size:128"`
	ShipZipCode    string  `gorm:"size:32"`
	ShipCountry    string  `gorm:"size:128"`
	Status         string  `gorm:"size:32;index;not null"`
	PaymentStatus  string  `gorm:"size:32;not null"`
	PaymentMethod  string  `gorm:"size:32;not null"`
	CouponCode     string  `gorm:"size:64"`
	CouponDiscount float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应 order_items 表，每行是订单的一个条目快照。
type OrderItemModel struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	OrderID     string  `gorm:"size:64;index;not null"`
	ProductID   string  `gorm:"size:64;index;not null"`
	ProductName string  `gorm:"size:255;not null"`
	Quantity    int     `gorm:"not null"`
	Price       float64 `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
