package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFavoriteRepository implements FavoriteRepository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Add stores a favorite; adding the same product twice is a no-op
func (r *GormFavoriteRepository) Add(ctx context.Context, f *catalog.Favorite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.FavoriteModel{
			CustomerID: f.CustomerID,
			ProductID:  f.ProductID,
			CreatedAt:  f.CreatedAt,
		}).Error
}

// Remove deletes a favorite
func (r *GormFavoriteRepository) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.FavoriteModel{}).Error
}

// Exists reports whether the product is on the customer's wishlist
func (r *GormFavoriteRepository) Exists(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FavoriteModel{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByCustomer lists a customer's favorites, most recent first
func (r *GormFavoriteRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]catalog.Favorite, error) {
	var rows []models.FavoriteModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	favorites := make([]catalog.Favorite, len(rows))
	for i, row := range rows {
		favorites[i] = catalog.Favorite{
			CustomerID: row.CustomerID,
			ProductID:  row.ProductID,
			CreatedAt:  row.CreatedAt,
		}
	}
	return favorites, nil
}

// Ensure GormFavoriteRepository implements FavoriteRepository
var _ catalog.FavoriteRepository = (*GormFavoriteRepository)(nil)
