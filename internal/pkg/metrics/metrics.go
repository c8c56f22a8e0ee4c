// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 订单与优惠券相关的业务指标。
// 全部通过 promauto 注册到默认 Registry，由 /metrics 暴露。
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_created_total",
		Help: "Number of orders successfully committed.",
	})

	OrdersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_orders_failed_total",
		Help: "Number of order creation attempts that failed, by reason.",
	}, []string{"reason"})

	CouponsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_coupons_redeemed_total",
		Help: "Number of coupon redemptions applied to committed orders.",
	})

	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_stock_rejections_total",
		Help: "Number of reservations rejected for insufficient stock.",
	})

	OrderAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_order_amount",
		Help:    "Distribution of committed order totals.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
