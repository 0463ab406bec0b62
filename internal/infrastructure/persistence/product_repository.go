package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, including inactive ones
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the products keyed by ID
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// List returns a page of active products and the total matching count
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	var rows []models.ProductModel
	if err := r.applySort(query, filter.Sort).
		Offset(filter.Offset()).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// Brands returns the distinct brands of active products
func (r *GormProductRepository) Brands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "brand")
}

// Categories returns the distinct categories of active products
func (r *GormProductRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *GormProductRepository) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("active = ? AND "+column+" <> ''", true).
		Distinct().
		Order(column+" ASC").
		Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// Save inserts or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductFromDomain(p)).Error
}

// applyFilter narrows to active products matching brand, category, search and newness
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	query = query.Where("active = ?", true)
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(brand))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if filter.OnlyNew {
		query = query.Where("is_new = ?", true)
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(brand) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return query
}

func (r *GormProductRepository) applySort(query *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case catalog.SortPriceAsc:
		query = query.Order("price ASC")
	case catalog.SortPriceDesc:
		query = query.Order("price DESC")
	case catalog.SortName:
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}
	return query.Order("id ASC")
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
