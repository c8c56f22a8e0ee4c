// internal/service/promotion/application/service.go
package application

import (
	"context"
	"time"

	"merx/internal/pkg/logger"
	"merx/internal/service/promotion/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PromotionService 提供优惠券的全部业务用例：
// 校验端点的只读试算、下单路径的核销与补偿、以及管理侧的 CRUD。
type PromotionService struct {
	repo   domain.CouponRepository
	scope  domain.ScopeEvaluator
	tracer trace.Tracer
	now    func() time.Time
}

// NewPromotionService 创建一个新的优惠服务实例。
func NewPromotionService(repo domain.CouponRepository, scope domain.ScopeEvaluator, tracer trace.Tracer) *PromotionService {
	return &PromotionService{repo: repo, scope: scope, tracer: tracer, now: time.Now}
}

// ValidateCoupon 是独立的校验端点：只读试算，绝不改动 used_count。
// amount <= 0 表示调用方没有提供金额，此时跳过门槛检查。
func (s *PromotionService) ValidateCoupon(ctx context.Context, code string, amount float64, cartCategories []string) (*ValidateCouponResult, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.ValidateCoupon")
	defer span.End()
	span.SetAttributes(
		attribute.String("coupon.code", code),
		attribute.Float64("order.amount", amount),
	)

	coupon, err := s.repo.FindByCode(ctx, domain.CanonicalCode(code))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if !coupon.IsValidAt(s.now()) {
		span.AddEvent("coupon rejected: outside validity window or limit reached")
		return nil, domain.ErrCouponInvalid
	}
	if amount > 0 && coupon.MinOrderAmount > 0 && amount < coupon.MinOrderAmount {
		span.AddEvent("coupon rejected: minimum order amount not met")
		return nil, domain.ErrMinimumNotMet
	}
	if err := s.checkScope(ctx, coupon, cartCategories); err != nil {
		span.RecordError(err)
		return nil, err
	}

	discount := coupon.Discount(amount)
	span.SetAttributes(attribute.Float64("coupon.discount", discount))
	return &ValidateCouponResult{Coupon: toCouponView(coupon), Discount: discount}, nil
}

// Redeem 是下单路径的核销：完整评估后原子地占用一次使用次数。
// 返回的 Redemption 会被快照进订单，后续券的任何改动不影响既有订单。
func (s *PromotionService) Redeem(ctx context.Context, code string, subtotal float64, cartCategories []string) (*Redemption, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.Redeem")
	defer span.End()
	span.SetAttributes(
		attribute.String("coupon.code", code),
		attribute.Float64("order.subtotal", subtotal),
	)

	coupon, err := s.repo.FindByCode(ctx, domain.CanonicalCode(code))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	discount, err := coupon.Evaluate(subtotal, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.checkScope(ctx, coupon, cartCategories); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 次数检查与自增是同一条条件更新，并发核销不会把 used_count 推过上限。
	if err := s.repo.ConsumeUsage(ctx, coupon.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "coupon usage consumption failed")
		return nil, err
	}

	span.AddEvent("coupon usage consumed")
	return &Redemption{CouponID: coupon.ID, Code: coupon.Code, Discount: discount}, nil
}

// CancelRedemption 回退一次核销，订单事务失败时由补偿链调用。
func (s *PromotionService) CancelRedemption(ctx context.Context, couponID string) error {
	ctx, span := s.tracer.Start(ctx, "promotion.CancelRedemption")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.id", couponID))

	if err := s.repo.ReleaseUsage(ctx, couponID); err != nil {
		// 补偿失败需要人工介入，记录后上抛。
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("coupon_id", couponID).Msg("failed to revert coupon usage")
		return err
	}
	return nil
}

// checkScope 评估券的品类作用范围；券未限定范围时直接放行。
func (s *PromotionService) checkScope(ctx context.Context, coupon *domain.Coupon, cartCategories []string) error {
	if len(coupon.ApplicableCategories) == 0 || s.scope == nil {
		return nil
	}
	ok, err := s.scope.InScope(ctx, coupon.ApplicableCategories, cartCategories)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCouponNotApplicable
	}
	return nil
}

// ---- 管理侧 CRUD ----

func (s *PromotionService) GetCoupon(ctx context.Context, id string) (*CouponView, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toCouponView(coupon)
	return &view, nil
}

func (s *PromotionService) ListCoupons(ctx context.Context) ([]CouponView, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CouponView, 0, len(coupons))
	for _, c := range coupons {
		views = append(views, toCouponView(c))
	}
	return views, nil
}

func (s *PromotionService) CreateCoupon(ctx context.Context, req *UpsertCouponRequest) (*CouponView, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.CreateCoupon")
	defer span.End()

	coupon := &domain.Coupon{
		ID:                   uuid.New().String(),
		Code:                 domain.CanonicalCode(req.Code),
		Description:          req.Description,
		DiscountType:         domain.DiscountType(req.DiscountType),
		DiscountValue:        req.DiscountValue,
		MinOrderAmount:       req.MinOrderAmount,
		MaxDiscountAmount:    req.MaxDiscountAmount,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		UsageLimit:           req.UsageLimit,
		IsActive:             req.IsActive == nil || *req.IsActive,
		ApplicableCategories: req.ApplicableCategories,
		CreatedAt:            s.now(),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		span.RecordError(err)
		return nil, err
	}
	view := toCouponView(coupon)
	return &view, nil
}

func (s *PromotionService) UpdateCoupon(ctx context.Context, id string, req *UpsertCouponRequest) (*CouponView, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.UpdateCoupon")
	defer span.End()

	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if req.Code != "" {
		coupon.Code = domain.CanonicalCode(req.Code)
	}
	coupon.Description = req.Description
	if req.DiscountType != "" {
		coupon.DiscountType = domain.DiscountType(req.DiscountType)
	}
	coupon.DiscountValue = req.DiscountValue
	coupon.MinOrderAmount = req.MinOrderAmount
	coupon.MaxDiscountAmount = req.MaxDiscountAmount
	if !req.StartDate.IsZero() {
		coupon.StartDate = req.StartDate
	}
	if !req.EndDate.IsZero() {
		coupon.EndDate = req.EndDate
	}
	coupon.UsageLimit = req.UsageLimit
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	coupon.ApplicableCategories = req.ApplicableCategories

	if err := s.repo.Update(ctx, coupon); err != nil {
		span.RecordError(err)
		return nil, err
	}
	view := toCouponView(coupon)
	return &view, nil
}

func (s *PromotionService) DeleteCoupon(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
