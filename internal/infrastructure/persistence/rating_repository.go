package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRatingRepository implements RatingRepository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// Create inserts a rating. The unique index on (customer, order, product)
// turns a second rating into ErrAlreadyRated.
func (r *GormRatingRepository) Create(ctx context.Context, rating *order.Rating) error {
	if err := r.db.WithContext(ctx).Create(models.RatingFromDomain(rating)).Error; err != nil {
		if isDuplicateKey(err) {
			return order.ErrAlreadyRated
		}
		return err
	}
	return nil
}

// FindByOrder lists the ratings given for an order
func (r *GormRatingRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.Rating, error) {
	return r.find(r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC"))
}

// FindByProduct lists a product's ratings, newest first
func (r *GormRatingRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]order.Rating, error) {
	query := r.db.WithContext(ctx).Model(&models.RatingModel{}).Where("product_id = ?", productID)
	return r.find(applyPaging(query, filter, RatingSortFields, "created_at"))
}

type ratingSummaryRow struct {
	ProductID uuid.UUID
	Average   float64
	Count     int64
}

// Summaries aggregates the average stars and rating count per product.
// Products without ratings are absent from the result.
func (r *GormRatingRepository) Summaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]order.RatingSummary, error) {
	result := make(map[uuid.UUID]order.RatingSummary, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var rows []ratingSummaryRow
	if err := r.db.WithContext(ctx).
		Model(&models.RatingModel{}).
		Select("product_id, AVG(stars) AS average, COUNT(*) AS count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProductID] = order.RatingSummary{
			ProductID: row.ProductID,
			Average:   row.Average,
			Count:     row.Count,
		}
	}
	return result, nil
}

func (r *GormRatingRepository) find(query *gorm.DB) ([]order.Rating, error) {
	var rows []models.RatingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	ratings := make([]order.Rating, len(rows))
	for i := range rows {
		ratings[i] = *rows[i].ToDomain()
	}
	return ratings, nil
}

// Ensure GormRatingRepository implements RatingRepository
var _ order.RatingRepository = (*GormRatingRepository)(nil)
