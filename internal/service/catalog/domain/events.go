// internal/service/catalog/domain/events.go
package domain

// LowStockAlert 是库存审计扫描发现低库存商品时发出的告警事件。
type LowStockAlert struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	CurrentStock int    `json:"currentStock"`
	Threshold    int    `json:"threshold"`
}
