package circularbuffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gregoryjjb/ringlist/circularbuffer"
)

func TestCircularBuffer(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		pushes []int
		want   []int
	}{
		{name: "empty", size: 3, pushes: nil, want: []int{}},
		{name: "partial", size: 3, pushes: []int{1, 2}, want: []int{1, 2}},
		{name: "exactly full", size: 3, pushes: []int{1, 2, 3}, want: []int{1, 2, 3}},
		{name: "wrapped", size: 3, pushes: []int{1, 2, 3, 4, 5}, want: []int{3, 4, 5}},
		{name: "size one", size: 1, pushes: []int{1, 2}, want: []int{2}},
		{name: "non-positive size", size: 0, pushes: []int{7, 8}, want: []int{8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := circularbuffer.New[int](tt.size)
			for _, v := range tt.pushes {
				cb.Push(v)
			}

			assert.Equal(t, tt.want, cb.Items())
			assert.Equal(t, len(tt.want), cb.Len())
		})
	}
}
