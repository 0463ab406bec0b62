package order

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindDueForAutoTransition(ctx context.Context, now time.Time, limit int, afterID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, now, limit, afterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, now time.Time) (string, error) {
	args := m.Called(ctx, now)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) NextVirtualAccountSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Load(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveLines(ctx context.Context, customerID uuid.UUID, keys []cart.LineKey) error {
	args := m.Called(ctx, customerID, keys)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

// MockReturnRepository is a mock implementation of order.ReturnRepository
type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.ReturnRequest, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.ReturnRequest, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ReturnRequest), args.Error(1)
}

func (m *MockReturnRepository) Create(ctx context.Context, r *order.ReturnRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReturnRepository) SaveWithLock(ctx context.Context, r *order.ReturnRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockPaymentProofRepository is a mock implementation of order.PaymentProofRepository
type MockPaymentProofRepository struct {
	mock.Mock
}

func (m *MockPaymentProofRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PaymentProof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.PaymentProof, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) FindPending(ctx context.Context, filter shared.Filter) ([]order.PaymentProof, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) Create(ctx context.Context, p *order.PaymentProof) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentProofRepository) SaveWithLock(ctx context.Context, p *order.PaymentProof) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockRatingRepository is a mock implementation of order.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, r *order.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRatingRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.Rating, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Rating), args.Error(1)
}

func (m *MockRatingRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]order.Rating, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Rating), args.Error(1)
}

func (m *MockRatingRepository) Summaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]order.RatingSummary, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]order.RatingSummary), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Brands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockProofStorage is a mock implementation of ProofStorage
type MockProofStorage struct {
	mock.Mock
}

func (m *MockProofStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockProofStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockProofStorage) PresignURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// ==================== Fixtures ====================

type repoSet struct {
	orders   *MockOrderRepository
	carts    *MockCartRepository
	returns  *MockReturnRepository
	proofs   *MockPaymentProofRepository
	ratings  *MockRatingRepository
	products *MockProductRepository
	scope    *NoOpTransactionScope
}

func newRepoSet() *repoSet {
	rs := &repoSet{
		orders:   new(MockOrderRepository),
		carts:    new(MockCartRepository),
		returns:  new(MockReturnRepository),
		proofs:   new(MockPaymentProofRepository),
		ratings:  new(MockRatingRepository),
		products: new(MockProductRepository),
	}
	rs.scope = NewNoOpTransactionScope(rs.orders, rs.carts, rs.returns, rs.proofs, rs.ratings)
	return rs
}

func newProduct(name string, price int64, sizes ...string) *catalog.Product {
	p, err := catalog.NewProduct(name, "Specs", "Sepatu", decimal.NewFromInt(price))
	if err != nil {
		panic(err)
	}
	p.Sizes = sizes
	p.Images = []string{"https://cdn.example.com/" + p.ID.String() + ".jpg"}
	return p
}

// placedOrder builds a persisted-looking order in the given status
func placedOrder(customerID uuid.UUID, method order.PaymentMethod, status order.Status) *order.Order {
	p := newProduct("Specs Accelerator", 100000, "42")
	item, err := order.NewItem(p.ID, p.Name, p.PrimaryImage(), "42", 2, p.Price)
	if err != nil {
		panic(err)
	}
	shipping, _ := order.LookupShippingOption("JNE")
	addr, _ := order.NewShippingAddress("Budi", "08123456789", "Jl. Merdeka 1, Bandung")
	va := ""
	if method == order.PaymentMethodBankTransfer {
		va = order.FormatVirtualAccount("39358", 1)
	}
	o, err := order.NewOrder(order.NewOrderParams{
		CustomerID:     customerID,
		OrderNumber:    "ORD-20260314-00001",
		Items:          []order.Item{item},
		Shipping:       shipping,
		PaymentMethod:  method,
		Address:        addr,
		VirtualAccount: va,
		Now:            baseTime,
	})
	if err != nil {
		panic(err)
	}
	o.Status = status
	if status == order.StatusShipped || status == order.StatusArrived || status == order.StatusCompleted {
		hours := 72
		o.EstimatedDeliveryHours = &hours
		o.TrackingNumber = "JNE123"
	}
	if status == order.StatusArrived || status == order.StatusCompleted {
		arrived := baseTime.Add(72 * time.Hour)
		o.ArrivedAt = &arrived
	}
	o.ClearDomainEvents()
	return o
}
