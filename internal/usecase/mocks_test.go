package usecase

import (
	"context"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	"github.com/caffineConfession/QROrderingApp-sub000/internal/notify"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	Repos repo.TxRepos
	depth int
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.depth++
	defer func() { m.depth-- }()
	return fn(m.Repos)
}

// InTx はWithinTxのコールバック実行中だけtrue
func (m *TxManagerMock) InTx() bool {
	return m.depth > 0
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	menuItems  repo.MenuItemRepository
	products   repo.ProductRepository
	ratings    repo.RatingRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) MenuItems() repo.MenuItemRepository   { return r.menuItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Ratings() repo.RatingRepository       { return r.ratings }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByPublicID(ctx context.Context, publicID string) (model.Order, error) {
	args := m.Called(ctx, publicID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByPublicIDForUpdate(ctx context.Context, publicID string) (model.Order, error) {
	args := m.Called(ctx, publicID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindForGatewayVerifyForUpdate(ctx context.Context, publicID string, gatewayOrderID string) (model.Order, error) {
	args := m.Called(ctx, publicID, gatewayOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByGatewayOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, processedByID int64) error {
	args := m.Called(ctx, orderID, status, processedByID)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64, upd repo.PaidUpdate) error {
	args := m.Called(ctx, orderID, upd)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) SalesSummary(ctx context.Context, from time.Time) ([]repo.SalesRow, error) {
	args := m.Called(ctx, from)
	rows, _ := args.Get(0).([]repo.SalesRow)
	return rows, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type MenuItemRepoMock struct{ mock.Mock }

func (m *MenuItemRepoMock) FindByProductAndServing(ctx context.Context, productID int64, servingType model.ServingType) (model.MenuItem, error) {
	args := m.Called(ctx, productID, servingType)
	mi, _ := args.Get(0).(model.MenuItem)
	return mi, args.Error(1)
}

func (m *MenuItemRepoMock) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, productIDs)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuItemRepoMock) DecrementStockIfEnough(ctx context.Context, productID int64, servingType model.ServingType, qty int64) (bool, error) {
	args := m.Called(ctx, productID, servingType, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MenuItemRepoMock) Create(ctx context.Context, mi model.MenuItem) (model.MenuItem, error) {
	args := m.Called(ctx, mi)
	out, _ := args.Get(0).(model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuItemRepoMock) UpdatePrice(ctx context.Context, id int64, price int64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MenuItemRepoMock) SetStock(ctx context.Context, id int64, qty int64, available bool) error {
	args := m.Called(ctx, id, qty, available)
	return args.Error(0)
}

func (m *MenuItemRepoMock) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAvailable(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

type RatingRepoMock struct{ mock.Mock }

func (m *RatingRepoMock) Create(ctx context.Context, r model.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RatingRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Rating, error) {
	args := m.Called(ctx, orderID)
	r, _ := args.Get(0).(model.Rating)
	return r, args.Error(1)
}

// =====================
// Gateway / Publisher mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateRemoteOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (string, error) {
	args := m.Called(ctx, amountMinor, currency, receipt)
	return args.String(0), args.Error(1)
}

// 発行されたイベントを記録するだけ
type PublisherRecorder struct {
	Events []notify.Event
}

func (p *PublisherRecorder) Publish(ctx context.Context, ev notify.Event) {
	p.Events = append(p.Events, ev)
}
