// internal/service/catalog/domain/errors.go
package domain

import "errors"

var (
	// ErrProductNotFound 商品不存在。
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock 库存不足，条件扣减未命中任何行。
	ErrInsufficientStock = errors.New("insufficient stock")
)
