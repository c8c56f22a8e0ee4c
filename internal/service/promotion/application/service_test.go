package application

import (
	"context"
	"testing"
	"time"

	"merx/internal/service/promotion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// fakeCouponRepo 是内存版仓储，记录 usage 相关调用以便断言副作用。
type fakeCouponRepo struct {
	coupons      map[string]*domain.Coupon
	consumeCalls int
	releaseCalls int
}

func newFakeCouponRepo(coupons ...*domain.Coupon) *fakeCouponRepo {
	repo := &fakeCouponRepo{coupons: map[string]*domain.Coupon{}}
	for _, c := range coupons {
		repo.coupons[c.ID] = c
	}
	return repo
}

func (r *fakeCouponRepo) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	for _, c := range r.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, domain.ErrCouponNotFound
}

func (r *fakeCouponRepo) FindByID(_ context.Context, id string) (*domain.Coupon, error) {
	if c, ok := r.coupons[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCouponNotFound
}

func (r *fakeCouponRepo) List(context.Context) ([]*domain.Coupon, error) {
	out := make([]*domain.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCouponRepo) Create(_ context.Context, c *domain.Coupon) error {
	r.coupons[c.ID] = c
	return nil
}

func (r *fakeCouponRepo) Update(_ context.Context, c *domain.Coupon) error {
	r.coupons[c.ID] = c
	return nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id string) error {
	delete(r.coupons, id)
	return nil
}

func (r *fakeCouponRepo) ConsumeUsage(_ context.Context, id string) error {
	c, ok := r.coupons[id]
	if !ok {
		return domain.ErrCouponNotFound
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return domain.ErrUsageLimitReached
	}
	c.UsedCount++
	r.consumeCalls++
	return nil
}

func (r *fakeCouponRepo) ReleaseUsage(_ context.Context, id string) error {
	if c, ok := r.coupons[id]; ok && c.UsedCount > 0 {
		c.UsedCount--
	}
	r.releaseCalls++
	return nil
}

func testCoupon() *domain.Coupon {
	now := time.Now()
	return &domain.Coupon{
		ID:            "c-1",
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		IsActive:      true,
	}
}

func newTestService(repo domain.CouponRepository) *PromotionService {
	return NewPromotionService(repo, nil, otel.Tracer("test"))
}

func TestValidateCoupon_DryRunDoesNotConsumeUsage(t *testing.T) {
	repo := newFakeCouponRepo(testCoupon())
	svc := newTestService(repo)

	for i := 0; i < 5; i++ {
		result, err := svc.ValidateCoupon(context.Background(), "save10", 200, nil)
		require.NoError(t, err)
		assert.InDelta(t, 20.0, result.Discount, 1e-9)
	}

	assert.Zero(t, repo.consumeCalls, "validation must never consume usage")
	assert.Zero(t, repo.coupons["c-1"].UsedCount)
}

func TestValidateCoupon_NotFound(t *testing.T) {
	svc := newTestService(newFakeCouponRepo())
	_, err := svc.ValidateCoupon(context.Background(), "NOPE", 100, nil)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestValidateCoupon_Expired(t *testing.T) {
	c := testCoupon()
	c.EndDate = time.Now().Add(-time.Minute)
	svc := newTestService(newFakeCouponRepo(c))

	_, err := svc.ValidateCoupon(context.Background(), "SAVE10", 100, nil)
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
}

func TestValidateCoupon_MinimumNotMet(t *testing.T) {
	c := testCoupon()
	c.MinOrderAmount = 100
	svc := newTestService(newFakeCouponRepo(c))

	_, err := svc.ValidateCoupon(context.Background(), "SAVE10", 50, nil)
	assert.ErrorIs(t, err, domain.ErrMinimumNotMet)
}

func TestValidateCoupon_WithoutAmountSkipsMinimumCheck(t *testing.T) {
	c := testCoupon()
	c.MinOrderAmount = 100
	svc := newTestService(newFakeCouponRepo(c))

	// 调用方没给金额时只校验有效性，不校验门槛
	result, err := svc.ValidateCoupon(context.Background(), "SAVE10", 0, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Discount)
}

func TestRedeem_ConsumesUsageOnce(t *testing.T) {
	repo := newFakeCouponRepo(testCoupon())
	svc := newTestService(repo)

	redemption, err := svc.Redeem(context.Background(), "SAVE10", 200, nil)
	require.NoError(t, err)
	assert.Equal(t, "c-1", redemption.CouponID)
	assert.InDelta(t, 20.0, redemption.Discount, 1e-9)
	assert.Equal(t, 1, repo.coupons["c-1"].UsedCount)
}

func TestRedeem_UsageLimitReached(t *testing.T) {
	c := testCoupon()
	c.UsageLimit = 1
	c.UsedCount = 1
	svc := newTestService(newFakeCouponRepo(c))

	_, err := svc.Redeem(context.Background(), "SAVE10", 200, nil)
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
}

func TestCancelRedemption_RevertsUsage(t *testing.T) {
	c := testCoupon()
	c.UsedCount = 1
	repo := newFakeCouponRepo(c)
	svc := newTestService(repo)

	require.NoError(t, svc.CancelRedemption(context.Background(), "c-1"))
	assert.Zero(t, repo.coupons["c-1"].UsedCount)
}

func TestCreateCoupon_CanonicalizesCode(t *testing.T) {
	repo := newFakeCouponRepo()
	svc := newTestService(repo)

	view, err := svc.CreateCoupon(context.Background(), &UpsertCouponRequest{
		Code:          " summer20 ",
		DiscountType:  "percentage",
		DiscountValue: 20,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER20", view.Code)
	assert.True(t, view.IsActive, "isActive defaults to true when omitted")
}
