package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService serves the read side of the catalog
type ProductService struct {
	productRepo catalog.ProductRepository
	ratingRepo  order.RatingRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, ratingRepo order.RatingRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		ratingRepo:  ratingRepo,
		logger:      logger.Named("products"),
	}
}

// List returns a page of products with their rating summaries
func (s *ProductService) List(ctx context.Context, in ListProductsInput) ([]ProductResponse, int64, error) {
	if !catalog.ValidSort(in.Sort) {
		return nil, 0, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown sort order")
	}
	filter := catalog.ProductFilter{
		Filter:   shared.DefaultFilter(),
		Brand:    strings.TrimSpace(in.Brand),
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
		OnlyNew:  in.OnlyNew,
	}
	if in.Page > 0 {
		filter.Page = in.Page
	}
	if in.PageSize > 0 {
		filter.PageSize = min(in.PageSize, 100)
	}
	filter.Search = strings.TrimSpace(in.Search)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, wrapErr(err)
	}
	summaries := s.summaries(ctx, catalog.ProductIDs(products))

	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = ToProductResponse(&products[i], summaries[products[i].ID])
	}
	return resp, total, nil
}

// Get returns one product with its rating summary
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapErr(err)
	}
	summaries := s.summaries(ctx, []uuid.UUID{p.ID})
	resp := ToProductResponse(p, summaries[p.ID])
	return &resp, nil
}

// Brands lists the distinct brands of active products
func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.productRepo.Brands(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return brands, nil
}

// Categories lists the distinct categories of active products
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return categories, nil
}

// summaries loads rating summaries; a failure only drops the ratings from
// the listing
func (s *ProductService) summaries(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*order.RatingSummary {
	out := make(map[uuid.UUID]*order.RatingSummary, len(ids))
	if s.ratingRepo == nil || len(ids) == 0 {
		return out
	}
	sums, err := s.ratingRepo.Summaries(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load rating summaries", zap.Int("products", len(ids)), zap.Error(err))
		return out
	}
	for id, sum := range sums {
		out[id] = &sum
	}
	return out
}

func wrapErr(err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
}
