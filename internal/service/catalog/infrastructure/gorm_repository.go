// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"merx/internal/service/catalog/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现。
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建一个新的 GORM 仓储实例。
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, pkgerrors.Wrap(err, "query product")
	}
	return toDomainProduct(&model), nil
}

// DecrementStockIfAvailable 把 "检查库存够不够" 和 "扣减" 压进同一条
// 条件 UPDATE，并发下单时由数据库保证不会超卖。
func (r *GormProductRepository) DecrementStockIfAvailable(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&ProductModel{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		// 没有命中任何行：要么商品不存在，要么库存不足。
		var count int64
		if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return pkgerrors.Wrap(err, "probe product existence")
		}
		if count == 0 {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&ProductModel{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "adjust stock")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= low_stock_threshold", true).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query low stock products")
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products, nil
}
