package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db, now: time.Now}
}

// Load returns the customer's cart in insertion order
func (r *GormCartRepository) Load(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("position ASC").Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.CartToDomain(customerID, rows), nil
}

// Save writes the lines changed since the cart was loaded. Unchanged lines
// are not touched, so a checkout that removed them in the meantime is not
// undone. An edited line that no longer exists, or a new line that another
// request inserted first, fails with shared.ErrConcurrencyConflict.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	changes := c.Changes()
	if len(changes) == 0 {
		return nil
	}
	now := r.now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&models.CartItemModel{}).
			Where("customer_id = ?", c.CustomerID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		for _, ch := range changes {
			key := ch.Line.Key
			lineScope := tx.Model(&models.CartItemModel{}).
				Where("customer_id = ? AND product_id = ? AND size = ?", c.CustomerID, key.ProductID, key.Size)

			switch ch.Kind {
			case cart.ChangeDelete:
				if err := lineScope.Delete(&models.CartItemModel{}).Error; err != nil {
					return err
				}
			case cart.ChangeUpdate:
				result := lineScope.Updates(map[string]any{
					"quantity":   ch.Line.Quantity,
					"selected":   ch.Selected,
					"updated_at": now,
				})
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return shared.ErrConcurrencyConflict
				}
			case cart.ChangeInsert:
				row := models.CartItemFromLine(c.CustomerID, ch.Line, ch.Selected, next, now)
				next++
				result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return shared.ErrConcurrencyConflict
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.MarkPersisted()
	return nil
}

// RemoveLines deletes exactly the given lines, leaving the rest of the cart
// and its selection untouched
func (r *GormCartRepository) RemoveLines(ctx context.Context, customerID uuid.UUID, keys []cart.LineKey) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			k = cart.NewLineKey(k.ProductID, k.Size)
			if err := tx.Where("customer_id = ? AND product_id = ? AND size = ?", customerID, k.ProductID, k.Size).
				Delete(&models.CartItemModel{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear deletes every line of the customer's cart
func (r *GormCartRepository) Clear(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CartItemModel{}).Error
}

// Ensure GormCartRepository implements cart.Repository
var _ cart.Repository = (*GormCartRepository)(nil)
