package store

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Entity is anything a Collection can hold.
type Entity interface {
	EntityID() string
}

// Collection is an insertion-ordered, in-memory set of entities keyed by id.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{items: make([]T, 0)}
}

func (c *Collection[T]) Append(item T) T {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
	return item
}

func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], nil
	}
	var zero T
	return zero, ErrNotFound
}

// Replace applies fn to the entity matching id and stores the result.
// The id of the returned entity is kept as-is, so fn must not change it.
func (c *Collection[T]) Replace(id string, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexOf(id)
	if idx < 0 {
		return zero, ErrNotFound
	}
	next, err := fn(c.items[idx])
	if err != nil {
		return zero, err
	}
	c.items[idx] = next
	return next, nil
}

// Remove deletes the entity matching id. Removing an absent id is a no-op.
func (c *Collection[T]) Remove(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexOf(id)
	if idx < 0 {
		return zero, false
	}
	removed := c.items[idx]
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	return removed, true
}

// List returns a copy of the collection in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
