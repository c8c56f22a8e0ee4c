// internal/service/catalog/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"merx/internal/service/catalog/application"
	"merx/internal/service/catalog/domain"
	"merx/internal/zookeeper"
)

// StockHandler 暴露库存的只读查询与管理侧的审计触发端点。
// 商品本身的 CRUD 属于独立的商品服务，不在这里。
type StockHandler struct {
	stock   *application.StockService
	zkConn  *zookeeper.Conn // 可为 nil，表示单实例部署、无需分布式锁
	alerter application.Alerter
}

func NewStockHandler(stock *application.StockService, zkConn *zookeeper.Conn, alerter application.Alerter) *StockHandler {
	return &StockHandler{stock: stock, zkConn: zkConn, alerter: alerter}
}

func (h *StockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stock/{productId}", h.getStock)
	mux.HandleFunc("POST /api/admin/stock/audit", h.adminOnly(h.auditStock))
}

func (h *StockHandler) getStock(w http.ResponseWriter, r *http.Request) {
	product, err := h.stock.Lookup(r.Context(), r.PathValue("productId"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{
		"productId": product.ID,
		"stock":     product.Stock,
		"lowStock":  product.IsLowStock(),
	}})
}

// auditStock 触发一次低库存扫描。多实例部署下由分布式锁串行化。
func (h *StockHandler) auditStock(w http.ResponseWriter, r *http.Request) {
	var lock application.AuditLock
	if h.zkConn != nil {
		zkLock, err := zookeeper.NewDistributedLock(h.zkConn, "stock-audit")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		lock = zkLock
	}

	alerts, err := h.stock.AuditStock(r.Context(), lock, h.alerter)
	if err != nil {
		if errors.Is(err, zookeeper.ErrLockTimeout) {
			writeError(w, http.StatusConflict, "audit already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(alerts), "data": alerts})
}

func (h *StockHandler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Role") != "admin" {
			writeError(w, http.StatusUnauthorized, "admin role required")
			return
		}
		next(w, r)
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
