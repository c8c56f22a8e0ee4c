// internal/service/catalog/infrastructure/redis_ledger.go
package infrastructure

import (
	"context"
	"fmt"

	"merx/internal/pkg/redis"
	"merx/internal/service/catalog/domain"
)

const (
	reserveScriptName = "stock_reserve"
	releaseScriptName = "stock_release"
)

// RedisStockLedger 是热点商品的库存快速路径。
// Redis 中的计数器在热点窗口内是库存的权威来源，
// 检查与扣减由 Lua 脚本在单个原子步骤中完成；
// 数据库行随后无条件落库，保证重启后可恢复。
type RedisStockLedger struct {
	client *redis.Client
	repo   domain.ProductRepository
}

// NewRedisStockLedger 创建快速路径实例并加载 Lua 脚本。
func NewRedisStockLedger(client *redis.Client, repo domain.ProductRepository) (*RedisStockLedger, error) {
	if err := client.LoadScriptFromContent(reserveScriptName, reserveScript); err != nil {
		return nil, fmt.Errorf("failed to load stock reserve script: %w", err)
	}
	if err := client.LoadScriptFromContent(releaseScriptName, releaseScript); err != nil {
		return nil, fmt.Errorf("failed to load stock release script: %w", err)
	}
	return &RedisStockLedger{client: client, repo: repo}, nil
}

// Prime 将商品库存从数据库装载进 Redis 计数器。
// 已存在的计数器不会被覆盖（SETNX 语义）。
func (l *RedisStockLedger) Prime(ctx context.Context, productID string) error {
	product, err := l.repo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	ok, err := l.client.GetClient().SetNX(ctx, stockKey(productID), product.Stock, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to prime stock counter: %w", err)
	}
	_ = ok
	return nil
}

// Reserve 原子地检查并扣减 Redis 计数器，成功后同步落库。
func (l *RedisStockLedger) Reserve(ctx context.Context, productID string, quantity int) error {
	result, err := l.client.RunScript(ctx, reserveScriptName, []string{stockKey(productID)}, quantity)
	if err != nil {
		return fmt.Errorf("stock reserve script failed: %w", err)
	}
	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("unexpected result type from reserve script: %T", result)
	}
	switch {
	case code == -2:
		return domain.ErrProductNotFound
	case code == -1:
		return domain.ErrInsufficientStock
	}

	// Redis 已经挡住了超卖，这里的落库不再需要条件。
	if err := l.repo.AdjustStock(ctx, productID, -quantity); err != nil {
		// 落库失败必须把计数器补回去，否则 Redis 与 DB 永久漂移。
		_, _ = l.client.RunScript(ctx, releaseScriptName, []string{stockKey(productID)}, quantity)
		return err
	}
	return nil
}

// Release 补回计数器与数据库行，是 Reserve 的补偿操作。
func (l *RedisStockLedger) Release(ctx context.Context, productID string, quantity int) error {
	if _, err := l.client.RunScript(ctx, releaseScriptName, []string{stockKey(productID)}, quantity); err != nil {
		return fmt.Errorf("stock release script failed: %w", err)
	}
	return l.repo.AdjustStock(ctx, productID, quantity)
}

func stockKey(productID string) string {
	return fmt.Sprintf("stock:{%s}", productID)
}

var reserveScript = `
-- KEYS[1]: 库存计数器, 例如 stock:{product-123}
-- ARGV[1]: 本次要扣减的数量

local stock = redis.call('get', KEYS[1])
if not stock then
    return -2 -- 计数器未装载, 视为商品不存在于快速路径
end

stock = tonumber(stock)
local qty = tonumber(ARGV[1])

if stock < qty then
    return -1 -- 库存不足
end

return redis.call('decrby', KEYS[1], qty)
`

var releaseScript = `
-- KEYS[1]: 库存计数器
-- ARGV[1]: 要补回的数量

if redis.call('exists', KEYS[1]) == 0 then
    return 0
end
return redis.call('incrby', KEYS[1], ARGV[1])
`
