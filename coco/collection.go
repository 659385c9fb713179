package coco

import "github.com/pkg/errors"

// Identified is implemented by every record kept in a Collection.
type Identified interface {
	EntityID() int
}

// Collection is an ordered list of records whose ids are unique within it.
//
// Lookups scan the live slice; datasets are bounded by file size, so there is
// no index to keep in sync with removals.
type Collection[T Identified] struct {
	items []T
}

// NewCollection builds a collection, rejecting duplicate ids.
func NewCollection[T Identified](items ...T) (Collection[T], error) {
	var c Collection[T]
	for _, item := range items {
		if err := c.Append(item); err != nil {
			return Collection[T]{}, err
		}
	}
	return c, nil
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// All returns the records in order. The slice must not be modified.
func (c *Collection[T]) All() []T {
	return c.items
}

// IDs returns the ids in order.
func (c *Collection[T]) IDs() []int {
	ids := make([]int, len(c.items))
	for i, item := range c.items {
		ids[i] = item.EntityID()
	}
	return ids
}

// Append adds a record at the end.
//
// Returns:
// - ErrIntegrity if the id is already present.
func (c *Collection[T]) Append(item T) error {
	if _, ok := c.Get(item.EntityID()); ok {
		return errors.Wrapf(ErrIntegrity, "duplicate id %d", item.EntityID())
	}
	c.items = append(c.items, item)
	return nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id int) (T, bool) {
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// GetMany returns the records for ids, in the order requested.
//
// Returns:
// - ErrIntegrity naming the first id that is not present.
func (c *Collection[T]) GetMany(ids []int) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		item, ok := c.Get(id)
		if !ok {
			return nil, errors.Wrapf(ErrIntegrity, "id %d not found", id)
		}
		out = append(out, item)
	}
	return out, nil
}

// Contains reports whether id is present.
func (c *Collection[T]) Contains(id int) bool {
	_, ok := c.Get(id)
	return ok
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the records matching pred as a new collection.
func (c *Collection[T]) Filter(pred func(T) bool) Collection[T] {
	var out Collection[T]
	for _, item := range c.items {
		if pred(item) {
			out.items = append(out.items, item)
		}
	}
	return out
}

// RemoveIf drops every record matching pred in one compacting pass and
// returns the removed records.
func (c *Collection[T]) RemoveIf(pred func(T) bool) []T {
	var removed []T
	kept := c.items[:0]
	for _, item := range c.items {
		if pred(item) {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	// Release references held past the new length.
	var zero T
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = zero
	}
	c.items = kept
	return removed
}

// Clone returns a collection with its own backing slice.
func (c *Collection[T]) Clone() Collection[T] {
	out := Collection[T]{items: make([]T, len(c.items))}
	copy(out.items, c.items)
	return out
}
