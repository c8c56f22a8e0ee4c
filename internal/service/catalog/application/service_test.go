package application

import (
	"context"
	"sync"
	"testing"

	"merx/internal/service/catalog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]*domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	snapshot := *p
	return &snapshot, nil
}

func (r *fakeProductRepo) DecrementStockIfAvailable(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return domain.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) FindLowStock(context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		if p.IsActive && p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeHotPath 记录调用，验证热点商品绕开数据库路径。
type fakeHotPath struct {
	reserveCalls int
	releaseCalls int
	primeCalls   int
}

func (f *fakeHotPath) Reserve(context.Context, string, int) error {
	f.reserveCalls++
	return nil
}

func (f *fakeHotPath) Release(context.Context, string, int) error {
	f.releaseCalls++
	return nil
}

func (f *fakeHotPath) Prime(context.Context, string) error {
	f.primeCalls++
	return nil
}

type fakeLock struct {
	locked   int
	unlocked int
}

func (l *fakeLock) Lock(context.Context) error { l.locked++; return nil }
func (l *fakeLock) Unlock() error              { l.unlocked++; return nil }

type fakeAlerter struct {
	alerts []domain.LowStockAlert
}

func (a *fakeAlerter) PublishLowStock(_ context.Context, alert domain.LowStockAlert) error {
	a.alerts = append(a.alerts, alert)
	return nil
}

func widget(id string, stock, threshold int) *domain.Product {
	return &domain.Product{ID: id, Name: "Widget " + id, Stock: stock, LowStockThreshold: threshold, IsActive: true, Price: 10}
}

func TestReserve_UsesConditionalUpdate(t *testing.T) {
	repo := newFakeProductRepo(widget("p-1", 5, 2))
	svc := NewStockService(repo, nil, nil, otel.Tracer("test"))

	require.NoError(t, svc.Reserve(context.Background(), "p-1", 3))
	p, err := svc.Lookup(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	// 余量不足时整体拒绝，库存保持不变
	assert.ErrorIs(t, svc.Reserve(context.Background(), "p-1", 3), domain.ErrInsufficientStock)
	p, _ = svc.Lookup(context.Background(), "p-1")
	assert.Equal(t, 2, p.Stock)
}

func TestReserve_UnknownProduct(t *testing.T) {
	svc := NewStockService(newFakeProductRepo(), nil, nil, otel.Tracer("test"))
	assert.ErrorIs(t, svc.Reserve(context.Background(), "ghost", 1), domain.ErrProductNotFound)
}

func TestReserve_HotProductTakesFastPath(t *testing.T) {
	repo := newFakeProductRepo(widget("hot-1", 100, 5), widget("cold-1", 100, 5))
	fast := &fakeHotPath{}
	svc := NewStockService(repo, fast, []string{"hot-1"}, otel.Tracer("test"))

	require.NoError(t, svc.Reserve(context.Background(), "hot-1", 1))
	assert.Equal(t, 1, fast.reserveCalls)

	// 非热点商品仍然走数据库条件更新
	require.NoError(t, svc.Reserve(context.Background(), "cold-1", 1))
	assert.Equal(t, 1, fast.reserveCalls)
	p, _ := svc.Lookup(context.Background(), "cold-1")
	assert.Equal(t, 99, p.Stock)
}

func TestRelease_RestoresStock(t *testing.T) {
	repo := newFakeProductRepo(widget("p-1", 5, 2))
	svc := NewStockService(repo, nil, nil, otel.Tracer("test"))

	require.NoError(t, svc.Reserve(context.Background(), "p-1", 3))
	require.NoError(t, svc.Release(context.Background(), "p-1", 3))

	p, _ := svc.Lookup(context.Background(), "p-1")
	assert.Equal(t, 5, p.Stock)
}

func TestPrimeHotProducts(t *testing.T) {
	fast := &fakeHotPath{}
	svc := NewStockService(newFakeProductRepo(), fast, []string{"h-1", "h-2"}, otel.Tracer("test"))
	require.NoError(t, svc.PrimeHotProducts(context.Background()))
	assert.Equal(t, 2, fast.primeCalls)
}

func TestAuditStock(t *testing.T) {
	repo := newFakeProductRepo(
		widget("low-1", 2, 5),
		widget("ok-1", 50, 5),
	)
	svc := NewStockService(repo, nil, nil, otel.Tracer("test"))
	lock := &fakeLock{}
	alerter := &fakeAlerter{}

	alerts, err := svc.AuditStock(context.Background(), lock, alerter)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "low-1", alerts[0].ProductID)
	assert.Equal(t, 2, alerts[0].CurrentStock)
	assert.Equal(t, 5, alerts[0].Threshold)
	assert.Len(t, alerter.alerts, 1)

	// 锁被成对地获取与释放
	assert.Equal(t, 1, lock.locked)
	assert.Equal(t, 1, lock.unlocked)
}
