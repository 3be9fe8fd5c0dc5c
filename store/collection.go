// Package store holds client-side copies of backend resources. Every store
// serialises its transitions and notifies subscribers after each one.
package store

import (
	"slices"
	"sync"
)

// Ticket identifies a fetch started with Begin.
type Ticket uint64

// State is a point-in-time copy of a Collection.
type State[T any] struct {
	Items   []T
	Current *T
	Loading bool
}

// Collection is an ordered set of records keyed by an identifier, with an
// optional current record and a loading flag.
//
// The current record follows the list by identifier: replacing the list
// refreshes it, and dropping its record from the list clears it. A record
// selected while absent from the list (opened directly by ID) is kept until
// a list containing it arrives or it is removed.
//
// Every change to the record list advances a generation counter. A fetch takes a Ticket with
// Begin and applies its result with Resolve, which discards the result when
// anything else changed the collection in the meantime.
type Collection[T any] struct {
	id func(T) string

	mu      sync.Mutex
	items   []T
	current *T
	listed  bool // current is backed by a record in items
	loading bool
	gen     uint64

	subs listeners[State[T]]
}

// NewCollection returns an empty collection that identifies records with id.
func NewCollection[T any](id func(T) string) *Collection[T] {
	return &Collection[T]{id: id, items: []T{}}
}

// Set replaces all records.
func (c *Collection[T]) Set(items []T) {
	c.mutate(func() {
		c.items = cloneItems(items)
		c.syncCurrentLocked()
	})
}

// Add appends a record.
func (c *Collection[T]) Add(item T) {
	c.mutate(func() {
		c.items = append(c.items, item)
		c.syncCurrentLocked()
	})
}

// Update replaces the record with the same identifier. The current record is
// replaced too when it matches. Unknown identifiers leave the list as is.
func (c *Collection[T]) Update(item T) {
	key := c.id(item)
	c.mutate(func() {
		for i := range c.items {
			if c.id(c.items[i]) == key {
				c.items[i] = item
			}
		}
		if c.current != nil && c.id(*c.current) == key {
			cp := item
			c.current = &cp
		}
		c.syncCurrentLocked()
	})
}

// Remove drops the record with identifier id and clears the current record
// if it is that record.
func (c *Collection[T]) Remove(id string) {
	c.mutate(func() {
		c.items = slices.DeleteFunc(c.items, func(it T) bool { return c.id(it) == id })
		if c.current != nil && c.id(*c.current) == id {
			c.current = nil
			c.listed = false
		}
	})
}

// Reset empties the collection, clears the selection and the loading flag,
// and invalidates any outstanding fetch.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	c.items = []T{}
	c.current = nil
	c.listed = false
	c.loading = false
	c.gen++
	state := c.stateLocked()
	c.mu.Unlock()
	c.subs.notify(state)
}

// SetCurrent selects item, or clears the selection when item is nil. The
// record list is untouched, so an outstanding fetch stays valid.
func (c *Collection[T]) SetCurrent(item *T) {
	c.mu.Lock()
	if item == nil {
		c.current = nil
		c.listed = false
	} else {
		cp := *item
		c.current = &cp
		c.listed = c.indexLocked(c.id(cp)) >= 0
	}
	state := c.stateLocked()
	c.mu.Unlock()
	c.subs.notify(state)
}

// SetLoading sets the loading flag. It does not advance the generation.
func (c *Collection[T]) SetLoading(loading bool) {
	c.mu.Lock()
	if c.loading == loading {
		c.mu.Unlock()
		return
	}
	c.loading = loading
	state := c.stateLocked()
	c.mu.Unlock()
	c.subs.notify(state)
}

// Begin starts a fetch. Any fetch begun earlier becomes stale.
func (c *Collection[T]) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return Ticket(c.gen)
}

// Resolve applies the result of the fetch identified by t. It reports false,
// leaving the collection untouched, when another fetch or mutation happened
// after t was issued.
func (c *Collection[T]) Resolve(t Ticket, items []T) bool {
	c.mu.Lock()
	if uint64(t) != c.gen {
		c.mu.Unlock()
		return false
	}
	c.gen++
	c.items = cloneItems(items)
	c.syncCurrentLocked()
	state := c.stateLocked()
	c.mu.Unlock()
	c.subs.notify(state)
	return true
}

// Current returns a copy of the current record, or nil.
func (c *Collection[T]) Current() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// Items returns a copy of the records in order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Find returns the record with identifier id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if c.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsLoading reports the loading flag.
func (c *Collection[T]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Snapshot returns the full state.
func (c *Collection[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe registers fn to receive the state after every transition. The
// returned function removes it and is safe to call more than once.
func (c *Collection[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	return c.subs.subscribe(fn)
}

func (c *Collection[T]) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.gen++
	state := c.stateLocked()
	c.mu.Unlock()
	c.subs.notify(state)
}

// syncCurrentLocked points current at its record in items. When that record
// is gone and current was backed by the list, current is cleared.
func (c *Collection[T]) syncCurrentLocked() {
	if c.current == nil {
		return
	}
	if i := c.indexLocked(c.id(*c.current)); i >= 0 {
		cp := c.items[i]
		c.current = &cp
		c.listed = true
		return
	}
	if c.listed {
		c.current = nil
		c.listed = false
	}
}

func (c *Collection[T]) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return c.id(it) == id })
}

func (c *Collection[T]) stateLocked() State[T] {
	s := State[T]{Items: cloneItems(c.items), Loading: c.loading}
	if c.current != nil {
		cp := *c.current
		s.Current = &cp
	}
	return s
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}
