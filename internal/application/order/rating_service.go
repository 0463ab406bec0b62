package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// RatingService records product ratings of completed orders
type RatingService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	ratingRepo     order.RatingRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	policy         order.Policy
	now            func() time.Time
}

// NewRatingService creates a new RatingService
func NewRatingService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	ratingRepo order.RatingRepository,
	policy order.Policy,
	logger *zap.Logger,
) *RatingService {
	if policy == (order.Policy{}) {
		policy = order.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		txScope:    txScope,
		orderRepo:  orderRepo,
		ratingRepo: ratingRepo,
		logger:     logger.Named("ratings"),
		policy:     policy,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher used by auto transition write-back
func (s *RatingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Rate rates one product of a completed order
func (s *RatingService) Rate(ctx context.Context, orderID, customerID, productID uuid.UUID, stars int, review string) (*RatingResponse, error) {
	resp, err := s.RateOrder(ctx, orderID, customerID, []RateItemInput{{ProductID: productID, Stars: stars, Review: review}})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// RateOrder rates several products of a completed order in one transaction
func (s *RatingService) RateOrder(ctx context.Context, orderID, customerID uuid.UUID, items []RateItemInput) ([]RatingResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Rate at least one product")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return nil, err
	}
	now := s.now()
	// an order past its confirmation period becomes ratable as soon as it is read
	o = writeBack(ctx, s.orderRepo, s.policy, s.eventPublisher, s.logger, o, now)

	ratings := make([]*order.Rating, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Each product can only be rated once")
		}
		seen[item.ProductID] = true
		r, err := o.Rate(customerID, item.ProductID, item.Stars, item.Review, now)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, r := range ratings {
			if err := repos.RatingRepo().Create(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info("order rated",
		zap.String("order_id", o.ID.String()),
		zap.Int("ratings", len(ratings)),
	)

	stored, err := s.ratingRepo.FindByOrder(ctx, o.ID)
	if err != nil {
		return nil, persistenceError(err)
	}
	byID := make(map[uuid.UUID]order.Rating, len(stored))
	for _, r := range stored {
		byID[r.ID] = r
	}
	resp := make([]RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		if persisted, ok := byID[r.ID]; ok {
			resp = append(resp, ToRatingResponse(&persisted))
			continue
		}
		resp = append(resp, ToRatingResponse(r))
	}
	return resp, nil
}

// ListProductRatings lists the reviews of a product, newest first
func (s *RatingService) ListProductRatings(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]RatingResponse, error) {
	ratings, err := s.ratingRepo.FindByProduct(ctx, productID, normalizeFilter(page, pageSize))
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := make([]RatingResponse, len(ratings))
	for i := range ratings {
		resp[i] = ToRatingResponse(&ratings[i])
	}
	return resp, nil
}

// Summaries returns the average rating of each product; unrated products
// are absent
func (s *RatingService) Summaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]RatingSummaryResponse, error) {
	summaries, err := s.ratingRepo.Summaries(ctx, productIDs)
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := make(map[uuid.UUID]RatingSummaryResponse, len(summaries))
	for id, sum := range summaries {
		resp[id] = RatingSummaryResponse{ProductID: id, Average: sum.Average, Count: sum.Count}
	}
	return resp, nil
}
