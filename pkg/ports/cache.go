package ports

import (
	"context"
	"time"

	"github.com/aretw0/tapevm/pkg/domain"
)

// ResultCache memoizes invocations. Execution is deterministic, so a hit is
// indistinguishable from running again. A cache is never the source of truth.
type ResultCache interface {
	// Get returns domain.ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (*domain.CachedResult, error)

	// Set stores a result. A zero ttl means no expiration.
	Set(ctx context.Context, key string, result *domain.CachedResult, ttl time.Duration) error
}
