// internal/service/order/domain/order.go
package domain

import "time"

// Address 是订单的收货地址。
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Item 是订单中的一行条目。
// ProductName 和 Price 在下单那一刻从商品快照复制进来，
// 之后商品怎么改价都不影响历史订单。
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

// CouponSnapshot 是应用到订单上的券的值快照。
// 按值保存而不是引用，券的后续修改不会回溯到已生成的订单。
type CouponSnapshot struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

// Order 是订单聚合的根实体。
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	TotalAmount     float64
	ShippingAddress Address
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	Coupon          *CouponSnapshot
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder 创建一个空白订单实体，条目与金额由下单事务在各步骤中填充。
func NewOrder(id, userID string, address Address, method PaymentMethod) (*Order, error) {
	if id == "" || userID == "" {
		return nil, ErrEmptyOrder
	}
	if !IsValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}
	now := time.Now()
	return &Order{
		ID:              id,
		UserID:          userID,
		ShippingAddress: address,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AddItem 追加一行条目，价格即为此刻截取的快照。
func (o *Order) AddItem(productID, productName string, quantity int, price float64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	o.Items = append(o.Items, Item{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		Price:       price,
	})
	return nil
}

// Subtotal 按快照价格计算折扣前小计。
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// ApplyCoupon 记录券快照并把折扣落进总价。
func (o *Order) ApplyCoupon(code string, discount float64) {
	o.Coupon = &CouponSnapshot{Code: code, Discount: discount}
}

// Finalize 结算最终总价：小计减去折扣。
// 固定面额券不封顶，总价允许为负。
func (o *Order) Finalize() {
	total := o.Subtotal()
	if o.Coupon != nil {
		total -= o.Coupon.Discount
	}
	o.TotalAmount = total
	o.UpdatedAt = time.Now()
}

// Transition 执行一次状态流转，非法流转返回 ErrInvalidTransition。
func (o *Order) Transition(next Status) error {
	if !IsValidStatus(next) || !CanTransition(o.Status, next) {
		return ErrInvalidTransition
	}
	o.Status = next
	o.UpdatedAt = time.Now()
	return nil
}

// CanBeViewedBy 判断请求者是否有权查看本订单：属主或管理员。
func (o *Order) CanBeViewedBy(requesterID, requesterRole string) bool {
	return o.UserID == requesterID || requesterRole == "admin"
}
