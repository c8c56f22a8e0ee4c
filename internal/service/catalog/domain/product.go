// internal/service/catalog/domain/product.go
package domain

import "time"

// Product 是商品聚合根。库存字段只能通过库存台账的
// Reserve/Release 操作变更，任何地方都不允许直接改写。
type Product struct {
	ID                string
	Name              string
	Description       string
	SKU               string
	Price             float64
	Category          string
	Stock             int
	LowStockThreshold int
	IsActive          bool
	CreatedAt         time.Time
}

// IsLowStock 判断当前库存是否低于告警阈值。
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
