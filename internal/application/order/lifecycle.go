package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents publishes and clears the aggregate's pending events. It runs
// after commit, so a failed publish is logged and never undoes the write.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if publisher != nil && len(events) > 0 {
			if err := publisher.Publish(ctx, events...); err != nil {
				log.Warn("failed to publish domain events",
					zap.String("aggregate_id", agg.GetID().String()),
					zap.Int("count", len(events)),
					zap.Error(err),
				)
			}
		}
		agg.ClearDomainEvents()
	}
}

// writeBack persists time-driven transitions of o. The evaluated order is
// returned even when the write-back fails so the caller still shows the
// correct state; a lost optimistic-lock race re-reads and re-evaluates.
func writeBack(
	ctx context.Context,
	repo order.OrderRepository,
	policy order.Policy,
	publisher shared.EventPublisher,
	log *zap.Logger,
	o *order.Order,
	now time.Time,
) *order.Order {
	next, changed := policy.Evaluate(o, now)
	if !changed {
		return o
	}

	if err := repo.SaveWithLock(ctx, next); err != nil {
		if isConflict(err) {
			log.Info("auto transition lost race, re-reading order",
				zap.String("order_id", o.ID.String()),
				zap.String("status", string(next.Status)),
			)
			fresh, ferr := repo.FindByID(ctx, o.ID)
			if ferr != nil {
				return next
			}
			evaluated, _ := policy.Evaluate(fresh, now)
			evaluated.ClearDomainEvents()
			return evaluated
		}
		log.Error("failed to persist auto transition",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		next.ClearDomainEvents()
		return next
	}

	log.Info("order auto transitioned",
		zap.String("order_id", next.ID.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next.Status)),
	)
	publishEvents(ctx, publisher, log, next)
	return next
}

// allProductsRated reports whether the customer rated every product of o
func allProductsRated(o *order.Order, ratings []order.Rating) bool {
	if len(ratings) == 0 {
		return false
	}
	rated := make(map[uuid.UUID]bool, len(ratings))
	for _, r := range ratings {
		if r.CustomerID == o.CustomerID {
			rated[r.ProductID] = true
		}
	}
	for _, id := range o.ProductIDs() {
		if !rated[id] {
			return false
		}
	}
	return true
}

func normalizeFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return f
}
