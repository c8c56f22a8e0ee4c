// internal/service/promotion/domain/rule.go
package domain

import "context"

// ScopeEvaluator 判断一组购物车品类是否落在券的作用范围内。
// 具体实现是一个规则引擎适配器（CEL），领域层只依赖这个抽象。
type ScopeEvaluator interface {
	InScope(ctx context.Context, applicable, cartCategories []string) (bool, error)
}
