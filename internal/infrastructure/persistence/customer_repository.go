package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a customer by email, ignoring case
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks if an account uses the email
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *identity.Customer) error {
	model := models.CustomerFromDomain(c)
	model.Email = normalizeEmail(model.Email)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return identity.ErrEmailTaken
		}
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ identity.CustomerRepository = (*GormCustomerRepository)(nil)
