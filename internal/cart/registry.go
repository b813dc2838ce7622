package cart

import (
	"sync"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

// SessionObserver receives every change of every cart in a Registry.
type SessionObserver func(sessionID string, state model.CartState)

// Registry hands out one Store per session.
type Registry struct {
	mu          sync.Mutex
	stores      map[string]*entry
	observers   []SessionObserver
	now         func() time.Time
	maxQuantity int
}

type entry struct {
	store       *Store
	unsubscribe func()
}

type RegistryOption func(*Registry)

// WithObserver attaches fn to every store the registry creates.
func WithObserver(fn SessionObserver) RegistryOption {
	return func(r *Registry) {
		r.observers = append(r.observers, fn)
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// WithMaxLineQuantity caps the quantity of each line in the registry's stores.
func WithMaxLineQuantity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxQuantity = n
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		stores:      make(map[string]*entry),
		now:         time.Now,
		maxQuantity: DefaultMaxLineQuantity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session's store, creating an empty one on first use. A returned
// store counts as active, so a Sweep that runs right after cannot evict it.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.stores[sessionID]; ok {
		e.store.touch()
		return e.store
	}

	store := newStore(r.now, r.maxQuantity)
	e := &entry{store: store}
	if len(r.observers) > 0 {
		observers := r.observers
		e.unsubscribe = store.Subscribe(func(state model.CartState) {
			for _, fn := range observers {
				fn(sessionID, state)
			}
		})
	}
	r.stores[sessionID] = e
	return store
}

// Peek returns the session's store without creating one.
func (r *Registry) Peek(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.stores[sessionID]
	if !ok {
		return nil, false
	}
	return e.store, true
}

// Sweep drops stores not touched within idle and returns how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	var unsubscribes []func()
	evicted := 0

	r.mu.Lock()
	for id, e := range r.stores {
		if e.store.Touched().Before(cutoff) {
			if e.unsubscribe != nil {
				unsubscribes = append(unsubscribes, e.unsubscribe)
			}
			delete(r.stores, id)
			evicted++
		}
	}
	r.mu.Unlock()

	// Outside mu: an observer of a committing store may itself call into the registry.
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	return evicted
}

func (r *Registry) MaxLineQuantity() int {
	return r.maxQuantity
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
