package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried command returns the
// result of the first attempt instead of executing twice.
type IdempotencyStore interface {
	// Claim reserves key. It returns claimed=false and the stored result when
	// the key was already completed, or claimed=false with an empty result
	// while another request still holds it.
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, result string, err error)

	// Complete records the result for a claimed key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release drops a claim after a failed attempt so the client may retry
	Release(ctx context.Context, key string) error

	Close() error
}
