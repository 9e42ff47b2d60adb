// Package reactive provides small observable-value primitives used by the
// downloader to publish progress and status without coupling producers to
// consumers: a broadcast-last-value property, a mutex-plus-notify property,
// and a FIFO command queue built on the same "latest value" idea.
package reactive

import (
	"errors"
	"sync"
)

// ErrWatcherClosed is returned by Changed when the source Property has been
// closed and no further values will ever be published.
var ErrWatcherClosed = errors.New("reactive: watcher closed")

// Property is a single-writer, multi-reader cell holding the latest value of
// type T. Updates never block; a watcher that was not waiting when they
// happened sees only the most recent of them on its next Changed.
type Property[T any] struct {
	mu      sync.Mutex
	current *T
	closed  bool
	version uint64 // bumped on every publication, compared against Watcher.seen
	waiters []chan struct{}
}

// NewProperty creates a Property seeded with the given value.
func NewProperty[T any](v T) *Property[T] {
	return &Property[T]{current: &v}
}

// Update publishes a new value and wakes every watcher currently waiting on
// Changed. It is a no-op once the property has been closed.
func (p *Property[T]) Update(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.current = &v
	p.wakeLocked()
}

// UpdateField loads the current value, applies f to a copy, and publishes the
// result. It is a no-op if the property holds no value (closed with nothing
// ever published, or closed before the first Update).
func (p *Property[T]) UpdateField(f func(T) T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.current == nil {
		return
	}
	next := f(*p.current)
	p.current = &next
	p.wakeLocked()
}

// Close transitions the property to its terminal state: no further updates
// are accepted and every current and future watcher observes
// ErrWatcherClosed from Changed.
func (p *Property[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.wakeLocked()
}

func (p *Property[T]) wakeLocked() {
	p.version++
	for _, ch := range p.waiters {
		close(ch)
	}
	p.waiters = nil
}

// Borrow returns the current value and whether one has ever been published.
func (p *Property[T]) Borrow() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		var zero T
		return zero, false
	}
	return *p.current, true
}

// Watch returns a handle observing subsequent publications on this Property.
func (p *Property[T]) Watch() *Watcher[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Watcher[T]{prop: p, seen: p.version}
}

// Watcher observes a Property without owning or cloning its value eagerly.
type Watcher[T any] struct {
	prop *Property[T]
	seen uint64
}

// Borrow synchronously returns the latest published value.
func (w *Watcher[T]) Borrow() (T, bool) {
	return w.prop.Borrow()
}

// Changed returns the latest value once there has been a publication this
// watcher has not yet observed (since Watch, or since its previous Changed),
// blocking until one happens. It returns ErrWatcherClosed if the property
// is already closed or becomes closed while waiting. Changed collapses
// intermediate updates: a slow watcher only ever sees the latest value.
func (w *Watcher[T]) Changed() (T, error) {
	p := w.prop
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		var zero T
		return zero, ErrWatcherClosed
	}
	if p.version == w.seen {
		ch := make(chan struct{})
		p.waiters = append(p.waiters, ch)
		p.mu.Unlock()

		<-ch

		p.mu.Lock()
	}
	defer p.mu.Unlock()
	w.seen = p.version
	if p.closed {
		var zero T
		return zero, ErrWatcherClosed
	}
	if p.current == nil {
		var zero T
		return zero, ErrWatcherClosed
	}
	return *p.current, nil
}
