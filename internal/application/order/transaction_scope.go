package order

import (
	"context"

	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// TransactionScope provides transactional access to the order repositories.
// All repository calls made inside fn share one database transaction and are
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction.
//
// Aggregate boundaries:
//   - OrderRepo: the Order aggregate with its items.
//   - CartRepo: cart lines removed by checkout in the same transaction.
//   - ReturnRepo, ProofRepo, RatingRepo: entities created next to an order
//     transition and written atomically with it.
type TransactionalRepositories interface {
	OrderRepo() order.OrderRepository
	CartRepo() cart.Repository
	ReturnRepo() order.ReturnRepository
	ProofRepo() order.PaymentProofRepository
	RatingRepo() order.RatingRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is used in unit tests where atomicity is not under test.
type NoOpTransactionScope struct {
	orderRepo  order.OrderRepository
	cartRepo   cart.Repository
	returnRepo order.ReturnRepository
	proofRepo  order.PaymentProofRepository
	ratingRepo order.RatingRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	cartRepo cart.Repository,
	returnRepo order.ReturnRepository,
	proofRepo order.PaymentProofRepository,
	ratingRepo order.RatingRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		returnRepo: returnRepo,
		proofRepo:  proofRepo,
		ratingRepo: ratingRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// CartRepo returns the cart repository.
func (s *NoOpTransactionScope) CartRepo() cart.Repository {
	return s.cartRepo
}

// ReturnRepo returns the return request repository.
func (s *NoOpTransactionScope) ReturnRepo() order.ReturnRepository {
	return s.returnRepo
}

// ProofRepo returns the payment proof repository.
func (s *NoOpTransactionScope) ProofRepo() order.PaymentProofRepository {
	return s.proofRepo
}

// RatingRepo returns the rating repository.
func (s *NoOpTransactionScope) RatingRepo() order.RatingRepository {
	return s.ratingRepo
}
