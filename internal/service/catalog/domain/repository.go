// internal/service/catalog/domain/repository.go
package domain

import "context"

// ProductRepository 定义了商品聚合的持久化接口。
// 它位于领域层，由基础设施层实现。
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)

	// DecrementStockIfAvailable 在单条条件更新中完成
	// "stock >= quantity 才扣减" 的检查与写入。
	// 库存不足时返回 ErrInsufficientStock，商品不存在时返回 ErrProductNotFound。
	DecrementStockIfAvailable(ctx context.Context, id string, quantity int) error

	// AdjustStock 无条件地调整库存（正数为补回，负数为扣减）。
	// 仅供补偿路径与 Redis 快速路径的落库使用。
	AdjustStock(ctx context.Context, id string, delta int) error

	// FindLowStock 返回所有库存不高于各自阈值的在售商品。
	FindLowStock(ctx context.Context) ([]*Product, error)
}
