package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// FavoriteService manages a customer's wishlist
type FavoriteService struct {
	favoriteRepo catalog.FavoriteRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favoriteRepo catalog.FavoriteRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		logger:       logger.Named("favorites"),
		now:          time.Now,
	}
}

// Add puts a product on the wishlist. Adding it twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, customerID, productID uuid.UUID) error {
	f, err := catalog.NewFavorite(customerID, productID, s.now())
	if err != nil {
		return err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return wrapErr(err)
	}
	exists, err := s.favoriteRepo.Exists(ctx, customerID, productID)
	if err != nil {
		return wrapErr(err)
	}
	if exists {
		return nil
	}
	if err := s.favoriteRepo.Add(ctx, f); err != nil {
		return wrapErr(err)
	}
	s.logger.Debug("favorite added",
		zap.String("customer_id", customerID.String()),
		zap.String("product_id", productID.String()),
	)
	return nil
}

// Remove takes a product off the wishlist
func (s *FavoriteService) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.favoriteRepo.Remove(ctx, customerID, productID); err != nil {
		return wrapErr(err)
	}
	return nil
}

// Toggle flips the wishlist state and returns whether the product is now a favorite
func (s *FavoriteService) Toggle(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	if customerID == uuid.Nil {
		return false, shared.ErrNotAuthenticated
	}
	exists, err := s.favoriteRepo.Exists(ctx, customerID, productID)
	if err != nil {
		return false, wrapErr(err)
	}
	if exists {
		return false, s.Remove(ctx, customerID, productID)
	}
	return true, s.Add(ctx, customerID, productID)
}

// List returns the wishlist, newest first, with product details. Entries
// whose product no longer exists are skipped.
func (s *FavoriteService) List(ctx context.Context, customerID uuid.UUID) ([]FavoriteResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	favorites, err := s.favoriteRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(favorites) == 0 {
		return []FavoriteResponse{}, nil
	}

	ids := make([]uuid.UUID, len(favorites))
	for i, f := range favorites {
		ids[i] = f.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrapErr(err)
	}

	resp := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		p, ok := products[f.ProductID]
		if !ok {
			continue
		}
		pr := ToProductResponse(p, nil)
		resp = append(resp, FavoriteResponse{ProductID: f.ProductID, CreatedAt: f.CreatedAt, Product: &pr})
	}
	return resp, nil
}
