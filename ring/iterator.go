package ring

import "fmt"

// cursor is the traversal state shared by Iterator and ConstIterator.
// anchor is the head captured when the cursor was created; reaching it
// again ends the pass.
type cursor[T comparable] struct {
	ring   *Ring[T]
	node   handle
	anchor handle
	end    bool
}

func (c cursor[T]) valid() bool {
	return c.ring != nil && c.ring.valid(c.node)
}

// IsEnd reports whether the iterator has completed a full pass.
func (c cursor[T]) IsEnd() bool {
	return c.end
}

// Value returns the value under the iterator.
func (c cursor[T]) Value() (T, error) {
	if c.end || !c.valid() {
		var zero T
		return zero, fmt.Errorf("%w: value", ErrInvalidDereference)
	}
	return c.ring.nodes[c.node.index].value, nil
}

// Next moves to the following node. Arriving back at the anchor turns the
// iterator into a past-end iterator.
func (c *cursor[T]) Next() error {
	if c.end || !c.valid() {
		return fmt.Errorf("%w: next", ErrInvalidAdvance)
	}

	next := c.ring.nodes[c.node.index].next
	c.node = c.ring.handleOf(next)
	if c.node == c.anchor {
		c.end = true
	}
	return nil
}

func (c cursor[T]) same(other cursor[T]) bool {
	return c.ring == other.ring && c.node == other.node && c.end == other.end
}

// Iterator is a forward iterator that can modify the value it points at.
// It is invalidated once the node it points at is erased or the ring is
// cleared; using it afterwards returns an error.
type Iterator[T comparable] struct {
	cursor[T]
}

// Equal reports whether both iterators point at the same node and agree on
// being past-end.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.same(other.cursor)
}

// Set replaces the value under the iterator.
func (it Iterator[T]) Set(v T) error {
	if it.end || !it.valid() {
		return fmt.Errorf("%w: set", ErrInvalidDereference)
	}
	it.ring.nodes[it.node.index].value = v
	return nil
}

// Update calls fn with a pointer to the value under the iterator. The
// pointer must not be retained after fn returns.
func (it Iterator[T]) Update(fn func(*T)) error {
	if it.end || !it.valid() {
		return fmt.Errorf("%w: update", ErrInvalidDereference)
	}
	fn(&it.ring.nodes[it.node.index].value)
	return nil
}

func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T]{it.cursor}
}

// ConstIterator is a read-only forward iterator.
type ConstIterator[T comparable] struct {
	cursor[T]
}

func (it ConstIterator[T]) Equal(other ConstIterator[T]) bool {
	return it.same(other.cursor)
}
