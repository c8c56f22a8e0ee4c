// internal/service/catalog/application/service.go
package application

import (
	"context"

	"merx/internal/pkg/logger"
	"merx/internal/service/catalog/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HotPathLedger 是热点商品的原子库存通道（Redis Lua 实现）。
type HotPathLedger interface {
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
	Prime(ctx context.Context, productID string) error
}

// AuditLock 在多实例部署下串行化库存审计扫描。
type AuditLock interface {
	Lock(ctx context.Context) error
	Unlock() error
}

// Alerter 是低库存告警的出站端口，由事件发布器实现。
type Alerter interface {
	PublishLowStock(ctx context.Context, alert domain.LowStockAlert) error
}

// StockService 是库存台账的应用服务。
// 普通商品走数据库条件更新，热点商品走 Redis 快速路径，
// 两条路径的检查与扣减都是单个原子步骤。
type StockService struct {
	repo     domain.ProductRepository
	fastPath HotPathLedger       // 可为 nil，表示未启用快速路径
	hot      map[string]struct{} // 走快速路径的商品ID集合
	tracer   trace.Tracer
}

// NewStockService 创建库存应用服务。
func NewStockService(repo domain.ProductRepository, fastPath HotPathLedger, hotProducts []string, tracer trace.Tracer) *StockService {
	hot := make(map[string]struct{}, len(hotProducts))
	for _, id := range hotProducts {
		hot[id] = struct{}{}
	}
	return &StockService{repo: repo, fastPath: fastPath, hot: hot, tracer: tracer}
}

// Lookup 返回商品当前快照（价格在下单时就是从这里截取的）。
func (s *StockService) Lookup(ctx context.Context, productID string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, productID)
}

// Reserve 原子地校验并扣减库存。
func (s *StockService) Reserve(ctx context.Context, productID string, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "stock.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("product.quantity", quantity),
	)

	var err error
	if s.isHot(productID) {
		span.SetAttributes(attribute.String("stock.path", "redis"))
		err = s.fastPath.Reserve(ctx, productID, quantity)
	} else {
		span.SetAttributes(attribute.String("stock.path", "mysql"))
		err = s.repo.DecrementStockIfAvailable(ctx, productID, quantity)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock reservation failed")
		return err
	}
	span.AddEvent("stock reserved")
	return nil
}

// Release 把一次预占补回台账，是 Reserve 的补偿操作。
func (s *StockService) Release(ctx context.Context, productID string, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "stock.Release")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("product.quantity", quantity),
	)

	if s.isHot(productID) {
		return s.fastPath.Release(ctx, productID, quantity)
	}
	return s.repo.AdjustStock(ctx, productID, quantity)
}

// PrimeHotProducts 启动时把热点商品的库存装载进 Redis 计数器。
func (s *StockService) PrimeHotProducts(ctx context.Context) error {
	if s.fastPath == nil {
		return nil
	}
	for id := range s.hot {
		if err := s.fastPath.Prime(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AuditStock 扫描低库存商品并发出告警。
// 由外部调度器按周期触发；分布式锁保证多实例下同一时刻只有一份扫描在跑。
func (s *StockService) AuditStock(ctx context.Context, lock AuditLock, alerter Alerter) ([]domain.LowStockAlert, error) {
	ctx, span := s.tracer.Start(ctx, "stock.Audit")
	defer span.End()

	if lock != nil {
		if err := lock.Lock(ctx); err != nil {
			span.RecordError(err)
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to release audit lock")
			}
		}()
	}

	products, err := s.repo.FindLowStock(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "low stock scan failed")
		return nil, err
	}

	alerts := make([]domain.LowStockAlert, 0, len(products))
	for _, p := range products {
		alert := domain.LowStockAlert{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.Stock,
			Threshold:    p.LowStockThreshold,
		}
		alerts = append(alerts, alert)
		if alerter != nil {
			if err := alerter.PublishLowStock(ctx, alert); err != nil {
				// 告警发布失败不应让扫描失败，记录后继续。
				logger.Ctx(ctx).Error().Err(err).Str("product_id", p.ID).Msg("failed to publish low stock alert")
			}
		}
	}

	span.SetAttributes(attribute.Int("audit.low_stock_count", len(alerts)))
	logger.Ctx(ctx).Info().Int("low_stock", len(alerts)).Msg("stock audit completed")
	return alerts, nil
}

func (s *StockService) isHot(productID string) bool {
	if s.fastPath == nil {
		return false
	}
	_, ok := s.hot[productID]
	return ok
}
