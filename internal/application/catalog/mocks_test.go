package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

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

// MockFavoriteRepository is a mock implementation of catalog.FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Add(ctx context.Context, f *catalog.Favorite) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	args := m.Called(ctx, customerID, productID)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Exists(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]catalog.Favorite, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Favorite), args.Error(1)
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
