// Package chunked provides the growable array record used for child lists
// and small numeric tables.
//
// An Array lives inside a pooled record. Its element storage is a single
// contiguous block that is replaced by a larger block when full, so element
// pointers must not be retained across a PushBack.
package chunked

import "iter"

// DefaultReserve is the capacity allocated on first use.
const DefaultReserve = 16

type Array[T any] struct {
	size int
	data []T
}

// NewArray returns an array with capacity for n elements.
func NewArray[T any](n int) Array[T] {
	var a Array[T]
	a.Reserve(n)
	return a
}

func (a *Array[T]) Size() int { return a.size }
func (a *Array[T]) Cap() int  { return len(a.data) }

// Reserve grows the backing block to exactly n elements if it is currently
// smaller. It never shrinks.
func (a *Array[T]) Reserve(n int) {
	if n <= len(a.data) {
		return
	}
	data := make([]T, n)
	copy(data, a.data[:a.size])
	a.data = data
}

func (a *Array[T]) PushBack(v T) {
	if a.size == len(a.data) {
		a.Reserve(max(DefaultReserve, 2*len(a.data)))
	}
	a.data[a.size] = v
	a.size++
}

// PopBack removes the last element. The capacity is kept.
func (a *Array[T]) PopBack() (T, bool) {
	var zero T
	if a.size == 0 {
		return zero, false
	}
	a.size--
	v := a.data[a.size]
	a.data[a.size] = zero
	return v, true
}

func (a *Array[T]) Get(i int) (T, bool) {
	if i < 0 || i >= a.size {
		var zero T
		return zero, false
	}
	return a.data[i], true
}

// At returns a pointer to element i, valid until the next growth.
func (a *Array[T]) At(i int) (*T, bool) {
	if i < 0 || i >= a.size {
		return nil, false
	}
	return &a.data[i], true
}

// Set overwrites element i. Setting the element one past the end appends.
func (a *Array[T]) Set(i int, v T) bool {
	switch {
	case i == a.size:
		a.PushBack(v)
		return true
	case i < 0 || i > a.size:
		return false
	}
	a.data[i] = v
	return true
}

// SwapRemove moves the last element into position i and shrinks the size by
// one. Order is not preserved.
func (a *Array[T]) SwapRemove(i int) bool {
	if i < 0 || i >= a.size {
		return false
	}
	last := a.size - 1
	a.data[i] = a.data[last]
	var zero T
	a.data[last] = zero
	a.size = last
	return true
}

// DeleteAt removes element i, shifting the later elements down.
func (a *Array[T]) DeleteAt(i int) bool {
	if i < 0 || i >= a.size {
		return false
	}
	copy(a.data[i:], a.data[i+1:a.size])
	a.size--
	var zero T
	a.data[a.size] = zero
	return true
}

// IndexFunc returns the index of the first element satisfying f, or -1.
func (a *Array[T]) IndexFunc(f func(T) bool) int {
	for i := range a.size {
		if f(a.data[i]) {
			return i
		}
	}
	return -1
}

// Reset empties the array, keeping its capacity.
func (a *Array[T]) Reset() {
	clear(a.data[:a.size])
	a.size = 0
}

func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range a.size {
			if !yield(i, a.data[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the elements.
func (a *Array[T]) Values() []T {
	vs := make([]T, a.size)
	copy(vs, a.data[:a.size])
	return vs
}
