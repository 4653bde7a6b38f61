// Package lock provides cross-process mutual exclusion keyed by a file path.
//
// A Guard brackets one read-modify-write cycle against a shared file. Both
// goroutines in the same process and separate processes sharing the path are
// serialized: the underlying flock(2) lock is held per open file description,
// so two Acquire calls on the same path always exclude each other.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrTimeout is returned by AcquireTimeout when the lock could not be taken
// within the bound. Callers that cannot tolerate unbounded blocking (a crashed
// holder never releases) should use the bounded variant.
var ErrTimeout = errors.New("lock: acquisition timed out")

// retryDelay is the polling interval while waiting for a contended lock.
const retryDelay = 25 * time.Millisecond

// Guard represents exclusive ownership of a path-keyed lock. Release is
// idempotent and must be called on every exit path, typically via defer.
type Guard struct {
	fl *flock.Flock

	mu       sync.Mutex
	released bool
}

// Acquire blocks until the lock at path is held by the caller or ctx is done.
// The lock file is created if it does not exist and is left in place after
// release; only the flock state matters.
func Acquire(ctx context.Context, path string) (*Guard, error) {
	fl := flock.New(path)
	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("lock: acquire %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock: acquire %s: lock not obtained", path)
	}
	return &Guard{fl: fl}, nil
}

// AcquireTimeout is the bounded-wait variant of Acquire. It returns ErrTimeout
// if the lock is still held by someone else after d.
func AcquireTimeout(ctx context.Context, path string, d time.Duration) (*Guard, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Acquire(ctx, path)
}

// Release drops the lock. Calling it more than once is safe; only the first
// call unlocks.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil
	}
	g.released = true
	if err := g.fl.Unlock(); err != nil {
		return fmt.Errorf("lock: release %s: %w", g.fl.Path(), err)
	}
	return nil
}
