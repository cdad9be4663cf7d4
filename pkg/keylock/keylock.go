package keylock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tapevm/internal/logging"
	"github.com/aretw0/tapevm/pkg/ports"
)

// ErrLockAcquire wraps failures to obtain the distributed lock.
var ErrLockAcquire = errors.New("failed to acquire lock")

// DefaultTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultTTL = 30 * time.Second

// entry holds a one-slot semaphore and the reference count.
type entry struct {
	sem  chan struct{}
	refs int
}

// Locks hands out one mutex per key.
type Locks struct {
	mu      sync.Mutex        // Global lock for the map
	entries map[string]*entry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures Locks.
type Option func(*Locks)

// WithLocker enables distributed locking. A ttl of zero means DefaultTTL.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(l *Locks) {
		l.locker = locker
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locks) {
		l.logger = logger
	}
}

// New creates an empty lock set.
func New(opts ...Option) *Locks {
	l := &Locks{
		entries: make(map[string]*entry),
		ttl:     DefaultTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates an entry and increments its reference count.
// The caller MUST call release(key) once it no longer holds or waits on entry.sem.
func (l *Locks) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[key]
	if !exists {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[key]
	if !exists {
		return
	}

	e.refs--
	if e.refs <= 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Do executes fn while holding the lock for key.
// A caller whose ctx ends while waiting gets ctx.Err() and fn is not called.
// Failing to take the distributed lock returns an error wrapping ErrLockAcquire
// without calling fn.
func (l *Locks) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	e := l.acquire(key)
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return ctx.Err()
	}
	defer func() {
		<-e.sem
		l.release(key)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLockAcquire, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				l.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
