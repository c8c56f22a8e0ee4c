package application

import (
	"context"
	"sync"
	"testing"

	"merx/internal/service/order/domain"
	"merx/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// ---- fakes ----

// fakeInventory 用互斥锁模拟数据库条件更新的原子性：
// 检查与扣减在同一个临界区内完成，绝不出现负库存。
type fakeInventory struct {
	mu       sync.Mutex
	products map[string]*port.ProductSnapshot
}

func newFakeInventory(products ...*port.ProductSnapshot) *fakeInventory {
	inv := &fakeInventory{products: map[string]*port.ProductSnapshot{}}
	for _, p := range products {
		inv.products[p.ProductID] = p
	}
	return inv
}

func (f *fakeInventory) Lookup(_ context.Context, productID string) (*port.ProductSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	snapshot := *p
	return &snapshot, nil
}

func (f *fakeInventory) Reserve(_ context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return domain.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeInventory) Release(_ context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (f *fakeInventory) stockOf(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].Stock
}

type fakeRedeemer struct {
	mu          sync.Mutex
	redemption  *port.Redemption
	redeemErr   error
	redeemCalls int
	cancelCalls int
}

func (f *fakeRedeemer) Redeem(_ context.Context, _ string, _ float64, _ []string) (*port.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemCalls++
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	return f.redemption, nil
}

func (f *fakeRedeemer) Cancel(_ context.Context, _ *port.Redemption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return nil
}

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	createErr  error
	createSeen int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createSeen++
	if f.createErr != nil {
		return f.createErr
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) FindByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindAll(context.Context) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (f *fakePublisher) Publish(_ context.Context, _ string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

// ---- helpers ----

func productA() *port.ProductSnapshot {
	return &port.ProductSnapshot{ProductID: "p-a", Name: "Widget A", Category: "gadgets", UnitPrice: 10, Stock: 5, IsActive: true}
}

func productB() *port.ProductSnapshot {
	return &port.ProductSnapshot{ProductID: "p-b", Name: "Widget B", Category: "gadgets", UnitPrice: 25, Stock: 1, IsActive: true}
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID: "u-1",
		Items: []CreateOrderItem{
			{ProductID: "p-a", Quantity: 2},
			{ProductID: "p-b", Quantity: 1},
		},
		ShippingAddress: domain.Address{Street: "1 Main St", City: "Springfield"},
		PaymentMethod:   "credit_card",
	}
}

func newService(repo *fakeOrderRepo, inv *fakeInventory, coupons *fakeRedeemer, pub *fakePublisher) *OrderApplicationService {
	var publisher port.EventPublisher
	if pub != nil {
		publisher = pub
	}
	return NewOrderApplicationService(repo, inv, coupons, nil, publisher, otel.Tracer("test"))
}

// ---- tests ----

func TestCreateOrder_Succeeds(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	pub := &fakePublisher{}
	svc := newService(repo, inv, &fakeRedeemer{}, pub)

	view, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.InDelta(t, 45.0, view.TotalAmount, 1e-9)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "pending", view.PaymentStatus)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, "Widget A", view.Items[0].ProductName)

	// 库存已扣减，订单已落库
	assert.Equal(t, 3, inv.stockOf("p-a"))
	assert.Equal(t, 0, inv.stockOf("p-b"))
	assert.Equal(t, 1, repo.count())

	// 1 条提交事件 + 每个条目 1 条库存变更事件
	assert.Len(t, pub.events, 3)
	committed, ok := pub.events[0].(domain.OrderCommitted)
	require.True(t, ok)
	assert.Equal(t, view.ID, committed.OrderID)
}

func TestCreateOrder_WithCoupon(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	coupons := &fakeRedeemer{redemption: &port.Redemption{CouponID: "c-1", Code: "SAVE10", Discount: 4.5}}
	svc := newService(repo, inv, coupons, nil)

	req := validRequest()
	req.CouponCode = "SAVE10"

	view, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, 40.5, view.TotalAmount, 1e-9)
	require.NotNil(t, view.Coupon)
	assert.Equal(t, "SAVE10", view.Coupon.Code)
	assert.InDelta(t, 4.5, view.Coupon.Discount, 1e-9)
	assert.Equal(t, 1, coupons.redeemCalls)
	assert.Zero(t, coupons.cancelCalls)
}

func TestCreateOrder_RejectedCouponDowngradesSilently(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	coupons := &fakeRedeemer{redeemErr: errors.Wrap(domain.ErrCouponRejected, "coupon not found")}
	svc := newService(repo, inv, coupons, nil)

	req := validRequest()
	req.CouponCode = "NOPE"

	view, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	// 按原价成交，没有券快照
	assert.InDelta(t, 45.0, view.TotalAmount, 1e-9)
	assert.Nil(t, view.Coupon)
	assert.Equal(t, 1, repo.count())
}

func TestCreateOrder_InfrastructureCouponErrorFailsOrder(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	coupons := &fakeRedeemer{redeemErr: errors.New("promotion db unreachable")}
	svc := newService(repo, inv, coupons, nil)

	req := validRequest()
	req.CouponCode = "SAVE10"

	_, err := svc.CreateOrder(context.Background(), req)
	require.Error(t, err)

	// 券核销排在库存扣减之前，库存必须原封不动
	assert.Equal(t, 5, inv.stockOf("p-a"))
	assert.Equal(t, 1, inv.stockOf("p-b"))
	assert.Zero(t, repo.count())
}

func TestCreateOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	b := productB()
	b.Stock = 0
	inv := newFakeInventory(productA(), b)
	repo := newFakeOrderRepo()
	coupons := &fakeRedeemer{redemption: &port.Redemption{CouponID: "c-1", Code: "SAVE10", Discount: 4.5}}
	svc := newService(repo, inv, coupons, nil)

	req := validRequest()
	req.CouponCode = "SAVE10"

	_, err := svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// A 的扣减被补回，券核销被取消，订单没有落库
	assert.Equal(t, 5, inv.stockOf("p-a"))
	assert.Equal(t, 0, inv.stockOf("p-b"))
	assert.Equal(t, 1, coupons.cancelCalls)
	assert.Zero(t, repo.count())
}

func TestCreateOrder_PersistFailureRollsBackStockAndCoupon(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	repo.createErr = errors.New("mysql is down")
	coupons := &fakeRedeemer{redemption: &port.Redemption{CouponID: "c-1", Code: "SAVE10", Discount: 4.5}}
	svc := newService(repo, inv, coupons, nil)

	req := validRequest()
	req.CouponCode = "SAVE10"

	_, err := svc.CreateOrder(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, 5, inv.stockOf("p-a"))
	assert.Equal(t, 1, inv.stockOf("p-b"))
	assert.Equal(t, 1, coupons.cancelCalls)
	assert.Zero(t, repo.count())
}

func TestCreateOrder_EmptyOrder(t *testing.T) {
	svc := newService(newFakeOrderRepo(), newFakeInventory(), &fakeRedeemer{}, nil)

	req := validRequest()
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	inv := newFakeInventory(productA())
	svc := newService(newFakeOrderRepo(), inv, &fakeRedeemer{}, nil)

	_, err := svc.CreateOrder(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateOrder_InvalidPaymentMethod(t *testing.T) {
	svc := newService(newFakeOrderRepo(), newFakeInventory(productA(), productB()), &fakeRedeemer{}, nil)

	req := validRequest()
	req.PaymentMethod = "cash_on_delivery"

	_, err := svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

// 并发下单不能超卖：库存 5，十个并发请求各要 1，只能成功 5 单。
func TestCreateOrder_ConcurrentRequestsNeverOversell(t *testing.T) {
	a := productA()
	a.Stock = 5
	inv := newFakeInventory(a)
	repo := newFakeOrderRepo()
	svc := newService(repo, inv, &fakeRedeemer{}, nil)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
				UserID:        "u-1",
				Items:         []CreateOrderItem{{ProductID: "p-a", Quantity: 1}},
				PaymentMethod: "paypal",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 0, inv.stockOf("p-a"))
	assert.Equal(t, 5, repo.count())
}

func TestGetOrder_Authorization(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	svc := newService(repo, inv, &fakeRedeemer{}, nil)

	view, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	t.Run("owner can view", func(t *testing.T) {
		got, err := svc.GetOrder(context.Background(), view.ID, "u-1", "customer")
		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("admin can view", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), view.ID, "someone-else", "admin")
		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), view.ID, "someone-else", "customer")
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), "no-such-order", "u-1", "customer")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestUpdateOrderStatus_CancellationReleasesStock(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	svc := newService(repo, inv, &fakeRedeemer{}, nil)

	view, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, 3, inv.stockOf("p-a"))

	updated, err := svc.UpdateOrderStatus(context.Background(), view.ID, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", updated.Status)

	// 取消后库存回到下单前
	assert.Equal(t, 5, inv.stockOf("p-a"))
	assert.Equal(t, 1, inv.stockOf("p-b"))
}

func TestUpdateOrderStatus_RejectsBackwardTransition(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	svc := newService(repo, inv, &fakeRedeemer{}, nil)

	view, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), view.ID, domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// 失败的流转不应该动库存
	assert.Equal(t, 3, inv.stockOf("p-a"))
}

func TestListUserOrders_OnlyOwnOrders(t *testing.T) {
	inv := newFakeInventory(productA(), productB())
	repo := newFakeOrderRepo()
	svc := newService(repo, inv, &fakeRedeemer{}, nil)

	_, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.UserID = "u-2"
	other.Items = []CreateOrderItem{{ProductID: "p-a", Quantity: 1}}
	_, err = svc.CreateOrder(context.Background(), other)
	require.NoError(t, err)

	mine, err := svc.ListUserOrders(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
