// internal/service/promotion/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"merx/internal/service/promotion/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormCouponRepository 是 CouponRepository 的 GORM 实现。
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository 创建一个新的 GORM 仓储实例。
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, pkgerrors.Wrap(err, "query coupon by code")
	}
	return ToDomainCoupon(&model), nil
}

func (r *GormCouponRepository) FindByID(ctx context.Context, id string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, pkgerrors.Wrap(err, "query coupon by id")
	}
	return ToDomainCoupon(&model), nil
}

func (r *GormCouponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	var models []CouponModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list coupons")
	}
	coupons := make([]*domain.Coupon, 0, len(models))
	for i := range models {
		coupons = append(coupons, ToDomainCoupon(&models[i]))
	}
	return coupons, nil
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	model, err := ToCouponModel(coupon)
	if err != nil {
		return err
	}
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(model).Error, "create coupon")
}

func (r *GormCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	model, err := ToCouponModel(coupon)
	if err != nil {
		return err
	}
	// used_count 只能通过 ConsumeUsage/ReleaseUsage 变更，
	// 避免管理侧更新覆盖并发核销的计数。
	res := r.db.WithContext(ctx).Model(&CouponModel{}).
		Where("id = ?", coupon.ID).
		Omit("used_count", "created_at").
		Updates(model)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update coupon")
	}
	if res.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func (r *GormCouponRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CouponModel{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete coupon")
	}
	if res.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// ConsumeUsage 的上限检查与自增在同一条条件更新里，
// 并发核销同一张券时由数据库决出胜负，不存在读-改-写窗口。
func (r *GormCouponRepository) ConsumeUsage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&CouponModel{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "consume coupon usage")
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&CouponModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return pkgerrors.Wrap(err, "probe coupon existence")
		}
		if count == 0 {
			return domain.ErrCouponNotFound
		}
		return domain.ErrUsageLimitReached
	}
	return nil
}

func (r *GormCouponRepository) ReleaseUsage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&CouponModel{}).
		Where("id = ? AND used_count > 0", id).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))
	return pkgerrors.Wrap(res.Error, "release coupon usage")
}
