package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultSweepBatchSize = 100

// SweepResult summarises one sweep
type SweepResult struct {
	Scanned   int
	Arrived   int
	Completed int
	Conflicts int
	Failed    int
}

// Changed returns the number of transitions applied
func (r SweepResult) Changed() int {
	return r.Arrived + r.Completed
}

// AutoTransitionSweeper applies due auto transitions to every shipped and
// arrived order, so correctness does not depend on a customer opening the
// order list.
type AutoTransitionSweeper struct {
	orderRepo      order.OrderRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	policy         order.Policy
	batchSize      int
	now            func() time.Time
}

// NewAutoTransitionSweeper creates a new sweeper
func NewAutoTransitionSweeper(orderRepo order.OrderRepository, policy order.Policy, batchSize int, logger *zap.Logger) *AutoTransitionSweeper {
	if policy == (order.Policy{}) {
		policy = order.DefaultPolicy()
	}
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoTransitionSweeper{
		orderRepo: orderRepo,
		logger:    logger.Named("sweeper"),
		policy:    policy,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AutoTransitionSweeper) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Sweep pages through candidate orders by ID and persists every change.
// A lost optimistic-lock race is counted and skipped; the next sweep or
// read picks the order up again.
func (s *AutoTransitionSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.now()
	afterID := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.orderRepo.FindDueForAutoTransition(ctx, now, s.batchSize, afterID)
		if err != nil {
			return result, fmt.Errorf("failed to load orders for auto transition: %w", err)
		}

		for i := range batch {
			result.Scanned++
			o := &batch[i]
			next, changed := s.policy.Evaluate(o, now)
			if !changed {
				continue
			}
			if err := s.orderRepo.SaveWithLock(ctx, next); err != nil {
				if isConflict(err) {
					result.Conflicts++
					continue
				}
				result.Failed++
				s.logger.Error("failed to persist auto transition",
					zap.String("order_id", o.ID.String()),
					zap.Error(err),
				)
				continue
			}

			switch next.Status {
			case order.StatusArrived:
				result.Arrived++
			case order.StatusCompleted:
				if o.Status == order.StatusShipped {
					result.Arrived++
				}
				result.Completed++
			}
			publishEvents(ctx, s.eventPublisher, s.logger, next)
		}

		if len(batch) < s.batchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	if result.Changed() > 0 || result.Conflicts > 0 || result.Failed > 0 {
		s.logger.Info("auto transition sweep finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("arrived", result.Arrived),
			zap.Int("completed", result.Completed),
			zap.Int("conflicts", result.Conflicts),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}
