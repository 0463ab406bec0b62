package order

import (
	"errors"
	"fmt"

	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// ErrIdempotencyInProgress is returned while a checkout with the same
// Idempotency-Key is still being processed
var ErrIdempotencyInProgress = shared.NewDomainError("IDEMPOTENCY_IN_PROGRESS", "A checkout with this key is already being processed")

// persistenceError passes domain errors through and wraps anything else as
// PERSISTENCE_FAILURE, keeping the cause for logs
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
}

func isConflict(err error) bool {
	return errors.Is(err, shared.ErrConcurrencyConflict)
}
