// internal/service/order/infrastructure/adapter/inventory_adapter.go
package adapter

import (
	"context"

	catalogapp "merx/internal/service/catalog/application"
	catalogdomain "merx/internal/service/catalog/domain"
	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"

	"github.com/pkg/errors"
)

// InventoryAdapter 把商品目录的库存服务适配成订单侧的出站端口，
// 并把目录侧的领域错误翻译成订单侧的等价错误。
type InventoryAdapter struct {
	stock *catalogapp.StockService
}

func NewInventoryAdapter(stock *catalogapp.StockService) *InventoryAdapter {
	return &InventoryAdapter{stock: stock}
}

var _ port.InventoryLedger = (*InventoryAdapter)(nil)

func (a *InventoryAdapter) Lookup(ctx context.Context, productID string) (*port.ProductSnapshot, error) {
	product, err := a.stock.Lookup(ctx, productID)
	if err != nil {
		return nil, translateStockError(err)
	}
	return &port.ProductSnapshot{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		UnitPrice: product.Price,
		Stock:     product.Stock,
		IsActive:  product.IsActive,
	}, nil
}

func (a *InventoryAdapter) Reserve(ctx context.Context, productID string, quantity int) error {
	return translateStockError(a.stock.Reserve(ctx, productID, quantity))
}

func (a *InventoryAdapter) Release(ctx context.Context, productID string, quantity int) error {
	return translateStockError(a.stock.Release(ctx, productID, quantity))
}

func translateStockError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		return domain.ErrProductNotFound
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return domain.ErrInsufficientStock
	default:
		return err
	}
}
