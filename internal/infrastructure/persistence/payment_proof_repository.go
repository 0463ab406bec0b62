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

// GormPaymentProofRepository implements PaymentProofRepository using GORM
type GormPaymentProofRepository struct {
	db *gorm.DB
}

// NewGormPaymentProofRepository creates a new GormPaymentProofRepository
func NewGormPaymentProofRepository(db *gorm.DB) *GormPaymentProofRepository {
	return &GormPaymentProofRepository{db: db}
}

// FindByID finds a payment proof by its ID
func (r *GormPaymentProofRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PaymentProof, error) {
	var model models.PaymentProofModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrProofNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the proofs uploaded for an order, newest first
func (r *GormPaymentProofRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.PaymentProof, error) {
	return r.find(r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC"))
}

// FindPending lists proofs waiting for review, oldest first by default
func (r *GormPaymentProofRepository) FindPending(ctx context.Context, filter shared.Filter) ([]order.PaymentProof, error) {
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	query := r.db.WithContext(ctx).Model(&models.PaymentProofModel{}).
		Where("status = ?", string(order.ProofStatusPending))
	return r.find(applyPaging(query, filter, PaymentProofSortFields, "created_at"))
}

// Create inserts a payment proof
func (r *GormPaymentProofRepository) Create(ctx context.Context, p *order.PaymentProof) error {
	return r.db.WithContext(ctx).Create(models.PaymentProofFromDomain(p)).Error
}

// SaveWithLock updates the review state when the stored version still matches
func (r *GormPaymentProofRepository) SaveWithLock(ctx context.Context, p *order.PaymentProof) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentProofModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"status":      string(p.Status),
			"admin_notes": p.AdminNotes,
			"reviewed_at": p.ReviewedAt,
			"updated_at":  p.UpdatedAt,
			"version":     p.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	p.Version++
	return nil
}

func (r *GormPaymentProofRepository) find(query *gorm.DB) ([]order.PaymentProof, error) {
	var rows []models.PaymentProofModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	proofs := make([]order.PaymentProof, len(rows))
	for i := range rows {
		proofs[i] = *rows[i].ToDomain()
	}
	return proofs, nil
}

// Ensure GormPaymentProofRepository implements PaymentProofRepository
var _ order.PaymentProofRepository = (*GormPaymentProofRepository)(nil)
