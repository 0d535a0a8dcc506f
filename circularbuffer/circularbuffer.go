package circularbuffer

import "sync"

// CircularBuffer keeps the last len(values) elements pushed into it.
type CircularBuffer[T any] struct {
	values   []T
	position int
	full     bool
	mu       sync.Mutex
}

func New[T any](size int) *CircularBuffer[T] {
	if size < 1 {
		size = 1
	}

	return &CircularBuffer[T]{
		values:   make([]T, size),
		position: 0,
	}
}

func (cb *CircularBuffer[T]) Push(element T) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.values[cb.position] = element
	cb.position++

	if cb.position >= len(cb.values) {
		cb.position = 0
		cb.full = true
	}
}

func (cb *CircularBuffer[T]) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.full {
		return len(cb.values)
	}
	return cb.position
}

// Each iterates over all elements in the buffer in the order they were inserted
func (cb *CircularBuffer[T]) Each(fn func(T)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.full && cb.position == 0 {
		return
	}

	i := 0
	if cb.full {
		i = cb.position
	}

	for n := 0; n < len(cb.values); n++ {
		fn(cb.values[i])

		i++
		if i >= len(cb.values) {
			i = 0
		}
		if i == cb.position {
			return
		}
	}
}

// Items returns a copy of the buffered elements, oldest first.
func (cb *CircularBuffer[T]) Items() []T {
	items := make([]T, 0, cb.Len())
	cb.Each(func(v T) {
		items = append(items, v)
	})
	return items
}
