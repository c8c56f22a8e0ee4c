// internal/service/report/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"merx/internal/service/report/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// paidOrders 是所有报表查询共用的口径：已支付且未取消。
const paidOrders = "orders.payment_status = 'paid' AND orders.status <> 'cancelled'"

// GormAnalyticsRepository 用原生聚合 SQL 实现报表查询，
// 读的是订单服务写入的同一批表。
type GormAnalyticsRepository struct {
	db *gorm.DB
}

func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) Summary(ctx context.Context, from, to time.Time) (*domain.Summary, error) {
	var row struct {
		TotalRevenue float64
		OrderCount   int64
	}
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS order_count").
		Where(paidOrders).
		Where("orders.created_at BETWEEN ? AND ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sales summary")
	}

	summary := &domain.Summary{TotalRevenue: row.TotalRevenue, OrderCount: row.OrderCount}
	if row.OrderCount > 0 {
		summary.AvgOrderValue = row.TotalRevenue / float64(row.OrderCount)
	}
	return summary, nil
}

// SalesByCategory 用商品当前的分类归属做聚合，条目本身不存分类。
func (r *GormAnalyticsRepository) SalesByCategory(ctx context.Context, from, to time.Time) ([]domain.CategorySales, error) {
	var rows []domain.CategorySales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(products.category, 'uncategorized') AS category, "+
			"SUM(order_items.price * order_items.quantity) AS revenue, "+
			"SUM(order_items.quantity) AS units_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where(paidOrders).
		Where("orders.created_at BETWEEN ? AND ?", from, to).
		Group("products.category").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sales by category")
	}
	return rows, nil
}

func (r *GormAnalyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductSales, error) {
	var rows []domain.ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, "+
			"MAX(order_items.product_name) AS product_name, "+
			"SUM(order_items.price * order_items.quantity) AS revenue, "+
			"SUM(order_items.quantity) AS units_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where(paidOrders).
		Where("orders.created_at BETWEEN ? AND ?", from, to).
		Group("order_items.product_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query top products")
	}
	return rows, nil
}
