package persistence

import (
	"context"

	apporder "github.com/tungtungsport/storefront/internal/application/order"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db     *gorm.DB
	policy order.Policy
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db, policy: order.DefaultPolicy()}
}

// WithPolicy sets the policy used by the transactional order repository.
func (s *GormTransactionScope) WithPolicy(policy order.Policy) *GormTransactionScope {
	return &GormTransactionScope{db: s.db, policy: policy}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, policy: s.policy}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	policy order.Policy
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx).WithPolicy(r.policy)
}

// CartRepo returns the cart repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CartRepo() cart.Repository {
	return NewGormCartRepository(r.tx)
}

// ReturnRepo returns the return request repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReturnRepo() order.ReturnRepository {
	return NewGormReturnRepository(r.tx)
}

// ProofRepo returns the payment proof repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProofRepo() order.PaymentProofRepository {
	return NewGormPaymentProofRepository(r.tx)
}

// RatingRepo returns the rating repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RatingRepo() order.RatingRepository {
	return NewGormRatingRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apporder.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
