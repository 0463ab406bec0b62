package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence names
const (
	orderNumberSequencePrefix = "order:"
	virtualAccountSequence    = "virtual_account"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db                *gorm.DB
	autoCompleteAfter time.Duration
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{
		db:                db,
		autoCompleteAfter: order.DefaultPolicy().AutoCompleteAfter,
	}
}

// WithPolicy makes the auto transition query use the policy's windows
func (r *GormOrderRepository) WithPolicy(policy order.Policy) *GormOrderRepository {
	return &GormOrderRepository{db: r.db, autoCompleteAfter: policy.AutoCompleteAfter}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCustomer finds an order placed by the customer
func (r *GormOrderRepository) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's orders
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.applyFilter(r.withItems(ctx).Model(&models.OrderModel{}).Where("customer_id = ?", customerID), filter)
	return r.find(applyPaging(query, filter, OrderSortFields, "created_at"))
}

// CountByCustomer counts a customer's orders
func (r *GormOrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("customer_id = ?", customerID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAll lists orders across customers
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.applyFilter(r.withItems(ctx).Model(&models.OrderModel{}), filter)
	return r.find(applyPaging(query, filter, OrderSortFields, "created_at"))
}

// Count counts orders across customers
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDueForAutoTransition pages through shipped orders past their estimated
// arrival and arrived orders past the auto complete window, ordered by ID
func (r *GormOrderRepository) FindDueForAutoTransition(ctx context.Context, now time.Time, limit int, afterID uuid.UUID) ([]order.Order, error) {
	if limit <= 0 {
		limit = maxPageSize
	}
	cutoff := now.Add(-r.autoCompleteAfter)
	query := r.withItems(ctx).
		Where("(status = ? AND estimated_arrival_at IS NOT NULL AND estimated_arrival_at <= ?) OR (status = ? AND arrived_at IS NOT NULL AND arrived_at < ?)",
			string(order.StatusShipped), now, string(order.StatusArrived), cutoff).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit)
	return r.find(query)
}

// Create inserts an order with all of its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderFromDomain(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Order number already exists")
		}
		return err
	}
	return nil
}

// SaveWithLock updates the order row when the stored version still matches
// and bumps the version. Items are immutable after checkout.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	model := models.OrderFromDomain(o)
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":                   model.Status,
			"tracking_number":          model.TrackingNumber,
			"estimated_delivery_hours": model.EstimatedDeliveryHours,
			"estimated_arrival_at":     model.EstimatedArrivalAt,
			"arrived_at":               model.ArrivedAt,
			"customer_confirmed":       model.CustomerConfirmed,
			"completed_at":             model.CompletedAt,
			"cancelled_at":             model.CancelledAt,
			"cancel_reason":            model.CancelReason,
			"updated_at":               model.UpdatedAt,
			"version":                  o.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	o.Version++
	return nil
}

// GenerateOrderNumber returns ORD-YYYYMMDD-NNNNN using a per-day counter
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("20060102")
	seq, err := r.nextSequence(ctx, orderNumberSequencePrefix+day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%05d", day, seq), nil
}

// NextVirtualAccountSequence returns the next virtual account number sequence
func (r *GormOrderRepository) NextVirtualAccountSequence(ctx context.Context) (int64, error) {
	return r.nextSequence(ctx, virtualAccountSequence)
}

// nextSequence increments a named counter. The UPDATE holds the row lock
// until the surrounding transaction ends, so concurrent callers serialize.
func (r *GormOrderRepository) nextSequence(ctx context.Context, name string) (int64, error) {
	var seq models.SequenceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SequenceModel{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SequenceModel{}).
			Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}
		return tx.First(&seq, "name = ?", name).Error
	})
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (r *GormOrderRepository) find(query *gorm.DB) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// applyFilter applies the status and order number search filters
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
