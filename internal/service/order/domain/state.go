// internal/service/order/domain/state.go
package domain

// Status 定义了订单的生命周期状态。
type Status string

const (
	StatusPending    Status = "pending"    // 已创建，等待确认
	StatusConfirmed  Status = "confirmed"  // 已确认
	StatusProcessing Status = "processing" // 备货中
	StatusShipped    Status = "shipped"    // 已发货
	StatusDelivered  Status = "delivered"  // 已送达
	StatusCancelled  Status = "cancelled"  // 已取消
)

// PaymentStatus 定义了订单的支付状态。
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod 定义了支持的支付方式。
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPaypal     PaymentMethod = "paypal"
	PaymentStripe     PaymentMethod = "stripe"
)

// IsValidPaymentMethod 校验支付方式是否在支持的枚举内。
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPaypal, PaymentStripe:
		return true
	}
	return false
}

// IsValidStatus 校验状态值是否在枚举内。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// transitions 是只进不退的状态机：
// pending → confirmed → processing → shipped → delivered，
// 只有 pending/confirmed 可以转向 cancelled。
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

// CanTransition 判断从 from 到 to 的状态流转是否被允许。
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
