// internal/service/report/domain/report.go
package domain

import "time"

// Summary 是区间内已支付订单的总体统计。
type Summary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	OrderCount    int64   `json:"orderCount"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// CategorySales 是按当前商品分类聚合的销售额。
// 分类取的是商品现在的归属，历史订单不保存分类快照。
type CategorySales struct {
	Category  string  `json:"category"`
	Revenue   float64 `json:"revenue"`
	UnitsSold int64   `json:"unitsSold"`
}

// ProductSales 是单个商品的销售额聚合。
type ProductSales struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Revenue     float64 `json:"revenue"`
	UnitsSold   int64   `json:"unitsSold"`
}

// SalesReport 是一次报表查询的完整结果。
type SalesReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Summary     Summary         `json:"summary"`
	ByCategory  []CategorySales `json:"byCategory"`
	TopProducts []ProductSales  `json:"topProducts"`
}
