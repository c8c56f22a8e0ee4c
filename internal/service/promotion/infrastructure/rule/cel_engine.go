// internal/service/promotion/infrastructure/rule/cel_engine.go
package rule

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// 作用范围规则：购物车里至少要有一个品类落在券限定的品类集合里。
const scopeExpression = `cart.exists(c, c in applicable)`

// CELScopeEvaluator 是 domain.ScopeEvaluator 的 CEL 实现。
// 表达式在构造时编译一次，之后每次评估只是喂入不同的变量。
// 这是一个典型的适配器，把规则引擎的 API 适配到领域接口上。
type CELScopeEvaluator struct {
	program cel.Program
}

// NewCELScopeEvaluator 编译作用范围规则并返回评估器。
func NewCELScopeEvaluator() (*CELScopeEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("applicable", cel.ListType(cel.StringType)),
		cel.Variable("cart", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	ast, issues := env.Compile(scopeExpression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile scope rule: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build cel program: %w", err)
	}
	return &CELScopeEvaluator{program: program}, nil
}

// InScope 实现了 domain.ScopeEvaluator 接口。
func (e *CELScopeEvaluator) InScope(ctx context.Context, applicable, cartCategories []string) (bool, error) {
	out, _, err := e.program.ContextEval(ctx, map[string]interface{}{
		"applicable": applicable,
		"cart":       cartCategories,
	})
	if err != nil {
		return false, fmt.Errorf("scope rule evaluation failed: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected result type from scope rule: %T", out.Value())
	}
	return result, nil
}
