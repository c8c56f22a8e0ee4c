// internal/service/promotion/domain/repository.go
package domain

import "context"

// CouponRepository 定义了优惠券聚合的持久化接口。
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindByID(ctx context.Context, id string) (*Coupon, error)
	List(ctx context.Context) ([]*Coupon, error)
	Create(ctx context.Context, coupon *Coupon) error
	Update(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id string) error

	// ConsumeUsage 把 "次数没触顶" 的检查和 used_count 自增
	// 压进同一条条件更新。触顶时返回 ErrUsageLimitReached。
	ConsumeUsage(ctx context.Context, id string) error

	// ReleaseUsage 回退一次核销，是 ConsumeUsage 的补偿操作。
	// used_count 不会被减到 0 以下。
	ReleaseUsage(ctx context.Context, id string) error
}
