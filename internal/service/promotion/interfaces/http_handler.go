// internal/service/promotion/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"merx/internal/service/promotion/application"
	"merx/internal/service/promotion/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// CouponHandler 封装了优惠券服务的 HTTP 处理器。
type CouponHandler struct {
	service *application.PromotionService
}

// NewCouponHandler 创建一个新的 HTTP 处理器实例。
func NewCouponHandler(service *application.PromotionService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CouponHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/coupons/validate/{code}", h.validateCoupon)
	mux.HandleFunc("GET /api/coupons", h.adminOnly(h.listCoupons))
	mux.HandleFunc("POST /api/coupons", h.adminOnly(h.createCoupon))
	mux.HandleFunc("GET /api/coupons/{id}", h.adminOnly(h.getCoupon))
	mux.HandleFunc("PUT /api/coupons/{id}", h.adminOnly(h.updateCoupon))
	mux.HandleFunc("DELETE /api/coupons/{id}", h.adminOnly(h.deleteCoupon))
}

// validateCoupon 是公开的只读试算端点，不占用使用次数。
func (h *CouponHandler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	code := r.PathValue("code")
	amount := 0.0
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		amount = parsed
	}
	var categories []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	result, err := h.service.ValidateCoupon(ctx, code, amount, categories)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
}

func (h *CouponHandler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.ListCoupons(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(coupons), "data": coupons})
}

func (h *CouponHandler) getCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.service.GetCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": coupon})
}

func (h *CouponHandler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req application.UpsertCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	coupon, err := h.service.CreateCoupon(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": coupon})
}

func (h *CouponHandler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req application.UpsertCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	coupon, err := h.service.UpdateCoupon(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": coupon})
}

func (h *CouponHandler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
}

// adminOnly 校验外部认证层注入的角色头。
func (h *CouponHandler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Role") != "admin" {
			writeError(w, http.StatusUnauthorized, "admin role required")
			return
		}
		next(w, r)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, "Coupon not found")
	case errors.Is(err, domain.ErrCouponInvalid):
		writeError(w, http.StatusBadRequest, "Coupon is not valid")
	case errors.Is(err, domain.ErrMinimumNotMet):
		writeError(w, http.StatusBadRequest, "Minimum order amount required")
	case errors.Is(err, domain.ErrCouponNotApplicable):
		writeError(w, http.StatusBadRequest, "Coupon not applicable to this cart")
	case errors.Is(err, domain.ErrUsageLimitReached):
		writeError(w, http.StatusBadRequest, "Coupon usage limit reached")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}
