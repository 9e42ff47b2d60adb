package reactive

import (
	"errors"
	"sync"
)

// ErrDestroyed is returned by operations on a LockProperty after Destroy has
// been called.
var ErrDestroyed = errors.New("reactive: property destroyed")

// LockProperty is a mutex-protected cell holding the latest value of type T,
// paired with a condition variable so callers can block until a predicate
// over the value holds. Unlike Property, every mutation and read goes
// through the same lock, which makes LockProperty suitable for values that
// require compound check-then-act logic (WaitUntil).
type LockProperty[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current *T
	destroyed bool
}

// NewLockProperty creates a LockProperty seeded with the given value.
func NewLockProperty[T any](v T) *LockProperty[T] {
	lp := &LockProperty[T]{current: &v}
	lp.cond = sync.NewCond(&lp.mu)
	return lp
}

// Update replaces the current value and wakes every goroutine blocked in
// WaitUntil so they can re-evaluate their predicate.
func (lp *LockProperty[T]) Update(v T) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.destroyed {
		return ErrDestroyed
	}
	lp.current = &v
	lp.cond.Broadcast()
	return nil
}

// TryUpdate attempts a non-blocking update. It reports true if it acquired
// the lock and wrote the value, false if the lock was contended, and
// ErrDestroyed if the property has been destroyed. Go's sync.Mutex has no
// native TryLock predating 1.18; this uses the standard library's TryLock.
func (lp *LockProperty[T]) TryUpdate(v T) (bool, error) {
	if !lp.mu.TryLock() {
		return false, nil
	}
	defer lp.mu.Unlock()
	if lp.destroyed {
		return false, ErrDestroyed
	}
	lp.current = &v
	lp.cond.Broadcast()
	return true, nil
}

// GetCurrent returns the current value and whether one has ever been set.
func (lp *LockProperty[T]) GetCurrent() (T, bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.current == nil {
		var zero T
		return zero, false
	}
	return *lp.current, true
}

// WaitUntil blocks until predicate(current value) returns true or the
// property is destroyed, then returns the satisfying value (or the zero
// value plus ErrDestroyed).
//
// The lock is held for the entire wait via sync.Cond, so there is no window
// between checking the predicate and suspending in which an Update can be
// missed: Cond.Wait atomically releases the lock and parks the goroutine,
// re-acquiring it before returning.
func (lp *LockProperty[T]) WaitUntil(predicate func(T) bool) (T, error) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for {
		if lp.destroyed {
			var zero T
			return zero, ErrDestroyed
		}
		if lp.current != nil && predicate(*lp.current) {
			return *lp.current, nil
		}
		lp.cond.Wait()
	}
}

// Destroy transitions the property to its terminal state and wakes every
// waiter, which then observe ErrDestroyed.
func (lp *LockProperty[T]) Destroy() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.destroyed {
		return
	}
	lp.destroyed = true
	lp.cond.Broadcast()
}
