package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merx/internal/service/promotion/application"
	"merx/internal/service/promotion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// stubRepo 只实现校验端点用到的查询，其余操作不会被触发。
type stubRepo struct {
	coupon *domain.Coupon
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	if s.coupon != nil && s.coupon.Code == code {
		return s.coupon, nil
	}
	return nil, domain.ErrCouponNotFound
}

func (s *stubRepo) FindByID(context.Context, string) (*domain.Coupon, error) {
	return nil, domain.ErrCouponNotFound
}
func (s *stubRepo) List(context.Context) ([]*domain.Coupon, error)  { return nil, nil }
func (s *stubRepo) Create(context.Context, *domain.Coupon) error    { return nil }
func (s *stubRepo) Update(context.Context, *domain.Coupon) error    { return nil }
func (s *stubRepo) Delete(context.Context, string) error            { return nil }
func (s *stubRepo) ConsumeUsage(context.Context, string) error      { return nil }
func (s *stubRepo) ReleaseUsage(context.Context, string) error      { return nil }

func newTestServer(coupon *domain.Coupon) *httptest.Server {
	svc := application.NewPromotionService(&stubRepo{coupon: coupon}, nil, otel.Tracer("test"))
	mux := http.NewServeMux()
	NewCouponHandler(svc).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func validCoupon() *domain.Coupon {
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

func TestValidateCouponEndpoint_OK(t *testing.T) {
	server := newTestServer(validCoupon())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/coupons/validate/SAVE10?amount=200")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Discount float64 `json:"discount"`
			Coupon   struct {
				Code string `json:"code"`
			} `json:"coupon"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.InDelta(t, 20.0, body.Data.Discount, 1e-9)
	assert.Equal(t, "SAVE10", body.Data.Coupon.Code)
}

func TestValidateCouponEndpoint_NotFound(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/coupons/validate/NOPE")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidateCouponEndpoint_MinimumNotMet(t *testing.T) {
	coupon := validCoupon()
	coupon.MinOrderAmount = 100
	server := newTestServer(coupon)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/coupons/validate/SAVE10?amount=50")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "Minimum")
}

func TestValidateCouponEndpoint_ExpiredCoupon(t *testing.T) {
	coupon := validCoupon()
	coupon.EndDate = time.Now().Add(-time.Minute)
	server := newTestServer(coupon)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/coupons/validate/SAVE10?amount=200")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	server := newTestServer(validCoupon())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/coupons")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/coupons", nil)
	req.Header.Set("X-User-Role", "admin")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
