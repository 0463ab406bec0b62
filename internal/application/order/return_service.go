package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ReturnService files and reviews return requests
type ReturnService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	returnRepo     order.ReturnRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	policy         order.Policy
	now            func() time.Time
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	returnRepo order.ReturnRepository,
	policy order.Policy,
	logger *zap.Logger,
) *ReturnService {
	if policy == (order.Policy{}) {
		policy = order.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnService{
		txScope:    txScope,
		orderRepo:  orderRepo,
		returnRepo: returnRepo,
		logger:     logger.Named("returns"),
		policy:     policy,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RequestReturn files a return and moves the order to RETURN_IN_PROGRESS in
// one transaction
func (s *ReturnService) RequestReturn(ctx context.Context, in RequestReturnInput) (*ReturnResponse, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	o, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := o.EnsureOwnedBy(in.CustomerID); err != nil {
		return nil, err
	}

	now := s.now()
	// a parcel whose delivery estimate has passed counts as arrived now; an
	// arrived order is left alone so a late request reports WINDOW_EXPIRED
	if o.Status == order.StatusShipped {
		o, _ = s.policy.Evaluate(o, now)
	}

	selections := make([]order.ReturnSelection, len(in.Items))
	for i, item := range in.Items {
		selections[i] = order.ReturnSelection{OrderItemID: item.OrderItemID, Quantity: item.Quantity}
	}
	r, err := o.RequestReturn(in.CustomerID, in.Reason, selections, now, s.policy)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ReturnRepo().Create(ctx, r); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info("return requested",
		zap.String("return_id", r.ID.String()),
		zap.String("order_id", o.ID.String()),
		zap.Int("quantity", r.TotalQuantity()),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, o, r)

	return s.reload(ctx, r.ID)
}

// GetReturn returns one of the customer's return requests
func (s *ReturnService) GetReturn(ctx context.Context, returnID, customerID uuid.UUID) (*ReturnResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if r.CustomerID != customerID {
		return nil, order.ErrReturnNotFound
	}
	resp := ToReturnResponse(r)
	return &resp, nil
}

// ListMyReturns lists the customer's return requests, newest first
func (s *ReturnService) ListMyReturns(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]ReturnResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	returns, err := s.returnRepo.FindByCustomer(ctx, customerID, normalizeFilter(page, pageSize))
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := make([]ReturnResponse, len(returns))
	for i := range returns {
		resp[i] = ToReturnResponse(&returns[i])
	}
	return resp, nil
}

// ApproveReturn accepts a pending return (staff)
func (s *ReturnService) ApproveReturn(ctx context.Context, returnID uuid.UUID, notes string) (*ReturnResponse, error) {
	return s.review(ctx, returnID, "approved", func(r *order.ReturnRequest, now time.Time) error {
		return r.Approve(notes, now)
	})
}

// RejectReturn declines a pending return (staff); notes are required
func (s *ReturnService) RejectReturn(ctx context.Context, returnID uuid.UUID, notes string) (*ReturnResponse, error) {
	return s.review(ctx, returnID, "rejected", func(r *order.ReturnRequest, now time.Time) error {
		return r.Reject(notes, now)
	})
}

// CompleteReturn closes an approved return once the goods are back (staff)
func (s *ReturnService) CompleteReturn(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, error) {
	return s.review(ctx, returnID, "completed", func(r *order.ReturnRequest, now time.Time) error {
		return r.Complete(now)
	})
}

func (s *ReturnService) review(ctx context.Context, returnID uuid.UUID, outcome string, apply func(*order.ReturnRequest, time.Time) error) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := apply(r, s.now()); err != nil {
		return nil, err
	}
	if err := s.returnRepo.SaveWithLock(ctx, r); err != nil {
		return nil, persistenceError(err)
	}
	s.logger.Info("return reviewed",
		zap.String("return_id", r.ID.String()),
		zap.String("outcome", outcome),
	)
	return s.reload(ctx, r.ID)
}

func (s *ReturnService) reload(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := ToReturnResponse(r)
	return &resp, nil
}
