// internal/service/order/domain/port/inventory.go
package port

import "context"

// ProductSnapshot 是下单时刻从商品目录取到的只读快照。
type ProductSnapshot struct {
	ProductID string
	Name      string
	Category  string
	UnitPrice float64
	Stock     int
	IsActive  bool
}

// InventoryLedger 是订单服务对库存能力的依赖抽象。
// Reserve 必须是条件扣减：库存不足时整体失败，绝不出现负库存。
type InventoryLedger interface {
	Lookup(ctx context.Context, productID string) (*ProductSnapshot, error)
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}
