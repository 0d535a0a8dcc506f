// Package ring implements a circular singly linked list.
//
// Nodes live in an arena and link to each other by index, so the last node
// links back to the first without any nil sentinel. The head node is a fixed
// anchor: PushFront and PopFront shuffle values through it instead of moving
// it, which keeps "the front" a stable handle for iterators.
//
// A Ring is not safe for concurrent use.
package ring

import "fmt"

// noNode is the handle carried by iterators over an empty ring.
var noNode = handle{index: -1}

type handle struct {
	index int
	gen   uint32
}

type node[T any] struct {
	value T
	next  int
	// gen is bumped every time the slot is released, which makes any
	// handle still pointing at the old occupant stale.
	gen  uint32
	live bool
}

// Ring is a circular singly linked list of T. The zero value is an empty
// ring ready to use.
type Ring[T comparable] struct {
	nodes []node[T]
	free  []int
	head  int // only meaningful while size > 0
	size  int
}

// New returns a ring whose iteration order from Begin matches values.
func New[T comparable](values ...T) *Ring[T] {
	r := &Ring[T]{}
	for i := len(values) - 1; i >= 0; i-- {
		r.PushFront(values[i])
	}
	return r
}

func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.size
}

func (r *Ring[T]) Empty() bool {
	return r.Len() == 0
}

// Front returns the value at the head of the ring.
func (r *Ring[T]) Front() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, fmt.Errorf("%w: front", ErrEmptyContainer)
	}
	return r.nodes[r.head].value, nil
}

// SetFront replaces the value at the head of the ring.
func (r *Ring[T]) SetFront(v T) error {
	if r.size == 0 {
		return fmt.Errorf("%w: set front", ErrEmptyContainer)
	}
	r.nodes[r.head].value = v
	return nil
}

// PushFront makes v the new front. The head node keeps its identity: a new
// node is linked right after it and takes over the old front value.
func (r *Ring[T]) PushFront(v T) {
	if r.size == 0 {
		idx := r.alloc(v, -1)
		r.nodes[idx].next = idx
		r.head = idx
		r.size = 1
		return
	}

	idx := r.alloc(v, r.nodes[r.head].next)
	r.nodes[r.head].next = idx
	r.nodes[r.head].value, r.nodes[idx].value = r.nodes[idx].value, r.nodes[r.head].value
	r.size++
}

// PopFront removes the front value. The successor's value is pulled into the
// head node and the successor is unlinked, so the head keeps its identity
// unless the ring becomes empty.
func (r *Ring[T]) PopFront() error {
	if r.size == 0 {
		return fmt.Errorf("%w: pop front", ErrEmptyContainer)
	}

	if r.size == 1 {
		r.release(r.head)
		r.size = 0
		return nil
	}

	victim := r.nodes[r.head].next
	r.nodes[r.head].value = r.nodes[victim].value
	r.nodes[r.head].next = r.nodes[victim].next
	r.release(victim)
	r.size--
	return nil
}

// InsertAfter links a new node holding v right after pos and returns an
// iterator to it.
func (r *Ring[T]) InsertAfter(pos Iterator[T], v T) (Iterator[T], error) {
	if !r.owns(pos.cursor) || pos.end {
		return Iterator[T]{}, fmt.Errorf("%w: insert after", ErrInvalidIterator)
	}

	at := pos.node.index
	idx := r.alloc(v, r.nodes[at].next)
	r.nodes[at].next = idx
	r.size++

	return Iterator[T]{r.cursorAt(idx)}, nil
}

// EraseAfter unlinks the node following pos and returns an iterator to the
// node that now follows pos. The head can never be erased this way; use
// PopFront for that.
func (r *Ring[T]) EraseAfter(pos Iterator[T]) (Iterator[T], error) {
	if !r.owns(pos.cursor) || pos.end {
		return Iterator[T]{}, fmt.Errorf("%w: erase after", ErrInvalidIterator)
	}

	at := pos.node.index
	victim := r.nodes[at].next
	if victim == r.head {
		return Iterator[T]{}, fmt.Errorf("%w: nothing to erase before head", ErrInvalidIterator)
	}

	r.nodes[at].next = r.nodes[victim].next
	r.release(victim)
	r.size--

	return Iterator[T]{r.cursorAt(r.nodes[at].next)}, nil
}

// Clear releases every node. It walks the cycle until it gets back to the
// head, so it terminates on a true cycle.
func (r *Ring[T]) Clear() {
	if r.size == 0 {
		return
	}

	idx := r.nodes[r.head].next
	for idx != r.head {
		next := r.nodes[idx].next
		r.release(idx)
		idx = next
	}
	r.release(r.head)
	r.size = 0
}

// Clone returns a deep copy that shares no nodes with r.
func (r *Ring[T]) Clone() *Ring[T] {
	c := &Ring[T]{}
	c.CopyFrom(r)
	return c
}

// CopyFrom replaces the contents of r with a copy of other. Iterators into r
// are invalidated.
func (r *Ring[T]) CopyFrom(other *Ring[T]) {
	if r == other {
		return
	}
	r.Clear()
	if other.Len() == 0 {
		return
	}

	first := r.alloc(other.nodes[other.head].value, -1)
	r.head = first
	cur := first
	for o := other.nodes[other.head].next; o != other.head; o = other.nodes[o].next {
		idx := r.alloc(other.nodes[o].value, -1)
		r.nodes[cur].next = idx
		cur = idx
	}
	r.nodes[cur].next = first
	r.size = other.size
}

// Equal reports whether other holds the same values in the same cyclic
// order, regardless of where each ring's head sits in that cycle.
func (r *Ring[T]) Equal(other *Ring[T]) bool {
	return r.EqualFunc(other, func(a, b T) bool { return a == b })
}

// EqualFunc is like Equal but compares values with eq.
func (r *Ring[T]) EqualFunc(other *Ring[T], eq func(a, b T) bool) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}

	front := r.nodes[r.head].value
	o := other.head
	for i := 0; i < r.size; i++ {
		if eq(front, other.nodes[o].value) && r.alignedWith(other, o, eq) {
			return true
		}
		o = other.nodes[o].next
	}
	return false
}

// alignedWith compares the ring read from its head against other read from
// start, skipping the first pair which the caller already matched.
func (r *Ring[T]) alignedWith(other *Ring[T], start int, eq func(a, b T) bool) bool {
	a := r.nodes[r.head].next
	b := other.nodes[start].next
	for j := 1; j < r.size; j++ {
		if !eq(r.nodes[a].value, other.nodes[b].value) {
			return false
		}
		a = r.nodes[a].next
		b = other.nodes[b].next
	}
	return true
}

// Each calls fn for every value, starting at the front.
func (r *Ring[T]) Each(fn func(T)) {
	if r.Len() == 0 {
		return
	}

	idx := r.head
	for n := 0; n < r.size; n++ {
		fn(r.nodes[idx].value)
		idx = r.nodes[idx].next
	}
}

func (r *Ring[T]) Values() []T {
	values := make([]T, 0, r.Len())
	r.Each(func(v T) {
		values = append(values, v)
	})
	return values
}

func (r *Ring[T]) String() string {
	return fmt.Sprint(r.Values())
}

func (r *Ring[T]) Begin() Iterator[T] {
	return Iterator[T]{r.boundary(false)}
}

func (r *Ring[T]) End() Iterator[T] {
	return Iterator[T]{r.boundary(true)}
}

func (r *Ring[T]) CBegin() ConstIterator[T] {
	return ConstIterator[T]{r.boundary(false)}
}

func (r *Ring[T]) CEnd() ConstIterator[T] {
	return ConstIterator[T]{r.boundary(true)}
}

// boundary builds begin (end=false) or end (end=true). Over an empty ring
// both are the same past-end iterator so that Begin() equals End().
func (r *Ring[T]) boundary(end bool) cursor[T] {
	if r.size == 0 {
		return cursor[T]{ring: r, node: noNode, anchor: noNode, end: true}
	}
	h := r.handleOf(r.head)
	return cursor[T]{ring: r, node: h, anchor: h, end: end}
}

// cursorAt returns a non-past-end cursor on idx anchored to the current head.
func (r *Ring[T]) cursorAt(idx int) cursor[T] {
	return cursor[T]{
		ring:   r,
		node:   r.handleOf(idx),
		anchor: r.handleOf(r.head),
	}
}

func (r *Ring[T]) handleOf(idx int) handle {
	return handle{index: idx, gen: r.nodes[idx].gen}
}

func (r *Ring[T]) valid(h handle) bool {
	if h.index < 0 || h.index >= len(r.nodes) {
		return false
	}
	n := &r.nodes[h.index]
	return n.live && n.gen == h.gen
}

func (r *Ring[T]) owns(c cursor[T]) bool {
	return c.ring == r && r.valid(c.node)
}

func (r *Ring[T]) alloc(v T, next int) int {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.nodes[idx].value = v
		r.nodes[idx].next = next
		r.nodes[idx].live = true
		return idx
	}

	r.nodes = append(r.nodes, node[T]{value: v, next: next, live: true})
	return len(r.nodes) - 1
}

func (r *Ring[T]) release(idx int) {
	var zero T
	n := &r.nodes[idx]
	n.value = zero
	n.next = -1
	n.live = false
	n.gen++
	r.free = append(r.free, idx)
}
