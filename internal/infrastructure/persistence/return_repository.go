package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReturnRepository implements ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// FindByID finds a return request with its items
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ReturnRequest, error) {
	var model models.ReturnRequestModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrReturnNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's return requests
func (r *GormReturnRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.ReturnRequest, error) {
	query := r.db.WithContext(ctx).Preload("Items").Model(&models.ReturnRequestModel{}).
		Where("customer_id = ?", customerID)
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	return r.find(applyPaging(query, filter, ReturnSortFields, "created_at"))
}

// FindByOrder lists the return requests filed for an order, oldest first
func (r *GormReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.ReturnRequest, error) {
	return r.find(r.db.WithContext(ctx).Preload("Items").
		Where("order_id = ?", orderID).
		Order("created_at ASC"))
}

// Create inserts a return request with its items
func (r *GormReturnRepository) Create(ctx context.Context, req *order.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(models.ReturnRequestFromDomain(req)).Error
}

// SaveWithLock updates the review state when the stored version still matches
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, req *order.ReturnRequest) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReturnRequestModel{}).
		Where("id = ? AND version = ?", req.ID, req.Version).
		Updates(map[string]any{
			"status":      string(req.Status),
			"admin_notes": req.AdminNotes,
			"reviewed_at": req.ReviewedAt,
			"updated_at":  req.UpdatedAt,
			"version":     req.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	req.Version++
	return nil
}

func (r *GormReturnRepository) find(query *gorm.DB) ([]order.ReturnRequest, error) {
	var rows []models.ReturnRequestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	requests := make([]order.ReturnRequest, len(rows))
	for i := range rows {
		requests[i] = *rows[i].ToDomain()
	}
	return requests, nil
}

// Ensure GormReturnRepository implements ReturnRepository
var _ order.ReturnRepository = (*GormReturnRepository)(nil)
