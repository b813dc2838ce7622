// Package cart holds the in-memory cart of each browsing session.
//
// A Store is the single owner of one cart. All mutation goes through AddItem,
// UpdateQuantity, RemoveItem, RemoveOrdered and Clear; each is applied atomically against the
// latest state, so rapid repeated requests compose instead of racing. Totals are
// never stored: they are derived from the line items on every read.
package cart

import (
	"sync"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// DefaultMaxLineQuantity caps the quantity of a single line.
const DefaultMaxLineQuantity = 999

// Observer receives the cart state after every change.
type Observer func(state model.CartState)

type Store struct {
	mu          sync.Mutex
	items       []model.LineItem
	index       map[string]int
	version     uint64
	touched     time.Time
	now         func() time.Time
	maxQuantity int

	// notifyMu is taken before mu is released so observers see states in mutation order.
	notifyMu  sync.Mutex
	observers map[uint64]Observer
	nextObsID uint64
}

func NewStore() *Store {
	return newStore(time.Now, DefaultMaxLineQuantity)
}

func newStore(now func() time.Time, maxQuantity int) *Store {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxLineQuantity
	}
	return &Store{
		index:       make(map[string]int),
		observers:   make(map[uint64]Observer),
		touched:     now(),
		now:         now,
		maxQuantity: maxQuantity,
	}
}

// MaxLineQuantity is the largest quantity a single line can hold.
func (s *Store) MaxLineQuantity() int {
	return s.maxQuantity
}

// AddItem merges quantity into the line for (product, variant), appending a new line
// when none exists. The stored product and variant references are replaced by copies
// of the ones given. Non-positive quantities are ignored; a line never grows past
// MaxLineQuantity.
func (s *Store) AddItem(product model.ProductRef, variant *model.VariantRef, quantity int) model.CartState {
	s.mu.Lock()
	if quantity <= 0 {
		return s.unchanged()
	}
	quantity = min(quantity, s.maxQuantity)

	var variantID string
	if variant != nil {
		variantID = variant.ID
	}
	key := model.LineItemKey(product.ID, variantID)

	if i, ok := s.index[key]; ok {
		item := &s.items[i]
		// item.Quantity <= maxQuantity, so the comparison cannot overflow
		if quantity > s.maxQuantity-item.Quantity {
			item.Quantity = s.maxQuantity
		} else {
			item.Quantity += quantity
		}
		item.Product = product.Clone()
		item.Variant = variant.Clone()
	} else {
		s.index[key] = len(s.items)
		s.items = append(s.items, model.LineItem{
			Key:      key,
			Product:  product.Clone(),
			Variant:  variant.Clone(),
			Quantity: quantity,
		})
	}
	return s.commit()
}

// UpdateQuantity sets the quantity of key, capped at MaxLineQuantity. Zero or
// negative removes the line.
func (s *Store) UpdateQuantity(key string, quantity int) model.CartState {
	s.mu.Lock()
	i, ok := s.index[key]
	if !ok {
		return s.unchanged()
	}
	if quantity <= 0 {
		s.removeAt(i)
		return s.commit()
	}
	quantity = min(quantity, s.maxQuantity)
	if s.items[i].Quantity == quantity {
		return s.unchanged()
	}
	s.items[i].Quantity = quantity
	return s.commit()
}

func (s *Store) RemoveItem(key string) model.CartState {
	s.mu.Lock()
	i, ok := s.index[key]
	if !ok {
		return s.unchanged()
	}
	s.removeAt(i)
	return s.commit()
}

func (s *Store) Clear() model.CartState {
	s.mu.Lock()
	if len(s.items) == 0 {
		return s.unchanged()
	}
	s.items = nil
	s.index = make(map[string]int)
	return s.commit()
}

// RemoveOrdered takes the quantities of items out of the cart, dropping lines that
// reach zero. Lines added or increased after items was captured keep the difference.
func (s *Store) RemoveOrdered(items []model.LineItem) model.CartState {
	s.mu.Lock()
	changed := false
	for _, ordered := range items {
		i, ok := s.index[ordered.Key]
		if !ok || ordered.Quantity <= 0 {
			continue
		}
		changed = true
		if s.items[i].Quantity <= ordered.Quantity {
			s.removeAt(i)
			continue
		}
		s.items[i].Quantity -= ordered.Quantity
	}
	if !changed {
		return s.unchanged()
	}
	return s.commit()
}

// State returns a snapshot of the cart.
func (s *Store) State() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.NewCartState(s.items, s.version)
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TotalItemsOf(s.items)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TotalOf(s.items)
}

// Touched reports the last time the cart was read or changed.
func (s *Store) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Subscribe registers fn for change notifications. Observers run synchronously on the
// mutating goroutine and must not mutate the store they observe.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.notifyMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.observers, id)
			s.notifyMu.Unlock()
		})
	}
}

// touch marks the store as in use without changing it.
func (s *Store) touch() {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
}

func (s *Store) removeAt(i int) {
	delete(s.index, s.items[i].Key)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Key] = j
	}
}

// unchanged releases mu without notifying. Caller holds mu.
func (s *Store) unchanged() model.CartState {
	s.touched = s.now()
	state := model.NewCartState(s.items, s.version)
	s.mu.Unlock()
	return state
}

// commit bumps the version, releases mu and notifies observers. Caller holds mu.
func (s *Store) commit() model.CartState {
	s.version++
	s.touched = s.now()
	state := model.NewCartState(s.items, s.version)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range s.observers {
		fn(state)
	}
	return state
}
