// internal/service/report/domain/repository.go
package domain

import (
	"context"
	"time"
)

// AnalyticsRepository 定义报表所需的三类聚合查询。
// 统计口径：payment_status = paid 且未取消的订单。
type AnalyticsRepository interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
	SalesByCategory(ctx context.Context, from, to time.Time) ([]CategorySales, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
}
