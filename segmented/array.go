package segmented

import (
	"fmt"
	"iter"

	"fortio.org/safecast"
	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/handle"
)

// Array is a transient view over a segment chain. Only the header handle,
// see Ref, should be stored in other records.
type Array struct {
	a   *arena.Arena
	hdr *Segment
	// n is the number of data slots per segment, and the index of the link
	// slot.
	n int
}

// New allocates the header segment of an empty array.
func New(a *arena.Arena, size Size) (*Array, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrSegmentSize, size)
	}
	r, s := arena.Alloc[Segment](a)
	s.self = r.Handle()
	s.header = s.self
	s.tail = s.self
	s.slots = make([]handle.Handle, size)
	return &Array{a: a, hdr: s, n: int(size) - 1}, nil
}

// Open binds a view to an existing array.
func Open(a *arena.Arena, ref handle.Ref[Segment]) (*Array, error) {
	s, err := arena.Deref(a, ref)
	if err != nil {
		return nil, err
	}
	if !s.IsHeader() {
		return nil, fmt.Errorf("%w: %v", ErrNotHeader, ref)
	}
	return &Array{a: a, hdr: s, n: len(s.slots) - 1}, nil
}

func (v *Array) Ref() handle.Ref[Segment] { return handle.Of[Segment](v.hdr.self) }

// SegmentSize returns N, the slots per segment including the link.
func (v *Array) SegmentSize() Size { return Size(v.n + 1) }

func (v *Array) TotalSize() int {
	return int(v.hdr.tailCount)*v.n + int(v.hdr.tailSize)
}

// TotalCapacity counts the data slots of every allocated segment, reserved
// spares included.
func (v *Array) TotalCapacity() int {
	return v.SegmentCount() * v.n
}

func (v *Array) SegmentCount() int {
	return int(v.hdr.tailCount) + 1 + int(v.hdr.spare)
}

// TailCount is the number of segments after the header up to the tail.
func (v *Array) TailCount() int { return int(v.hdr.tailCount) }

// TailSize is the number of data slots in use in the tail segment.
func (v *Array) TailSize() int { return int(v.hdr.tailSize) }

func (v *Array) PushBack(h handle.Handle) {
	hdr := v.hdr
	t := v.tail()
	if int(hdr.tailSize) < v.n {
		t.slots[hdr.tailSize] = h
		hdr.tailSize++
		return
	}

	var s *Segment
	if next := t.slots[v.n]; next != handle.Nil {
		s = v.segment(next)
		hdr.spare--
	} else {
		s = v.grow(t)
	}
	hdr.tail = s.self
	hdr.tailCount++
	s.slots[0] = h
	hdr.tailSize = 1
}

// PopBack removes the last element. When that empties a tail segment other
// than the header, the segment is freed and its predecessor becomes the
// tail.
func (v *Array) PopBack() (handle.Handle, bool) {
	hdr := v.hdr
	if hdr.tailSize == 0 {
		return handle.Nil, false
	}
	t := v.tail()
	hdr.tailSize--
	h := t.slots[hdr.tailSize]
	t.slots[hdr.tailSize] = handle.Nil

	if hdr.tailSize != 0 || hdr.tailCount == 0 {
		return h, true
	}

	prev := v.segment(t.prev)
	next := t.slots[v.n]
	prev.slots[v.n] = next
	if next != handle.Nil {
		v.segment(next).prev = prev.self
	}
	if err := v.a.FreeHandle(t.self); err != nil {
		panic(fmt.Errorf("%w: %v", ErrCorruptLink, err))
	}
	hdr.tail = prev.self
	hdr.tailCount--
	hdr.tailSize = uint32(v.n)
	return h, true
}

func (v *Array) Get(i int) (handle.Handle, bool) {
	if i < 0 || i >= v.TotalSize() {
		return handle.Nil, false
	}
	s, off := v.locate(i)
	return s.slots[off], true
}

// Set overwrites element i. Setting the element one past the end appends.
func (v *Array) Set(i int, h handle.Handle) bool {
	size := v.TotalSize()
	switch {
	case i == size:
		v.PushBack(h)
		return true
	case i < 0 || i > size:
		return false
	}
	s, off := v.locate(i)
	s.slots[off] = h
	return true
}

// Remove deletes the most recently added occurrence of h by moving the last
// element into its place. Element order is not preserved.
func (v *Array) Remove(h handle.Handle) bool {
	hdr := v.hdr
	tail := v.tail()
	s, limit := tail, int(hdr.tailSize)
	for {
		for j := limit - 1; j >= 0; j-- {
			if s.slots[j] != h {
				continue
			}
			isLast := s == tail && j == limit-1
			last, _ := v.PopBack()
			if !isLast {
				s.slots[j] = last
			}
			return true
		}
		if s == hdr {
			return false
		}
		s, limit = v.segment(s.prev), v.n
	}
}

// Reserve allocates enough spare segments, linked after the tail, for the
// array to hold n elements without further allocation.
func (v *Array) Reserve(n int) {
	if n <= v.TotalCapacity() {
		return
	}
	need := (n + v.n - 1) / v.n
	add, err := safecast.Conv[uint32](need - v.SegmentCount())
	if err != nil {
		panic(fmt.Errorf("segmented reserve of %d: %w", n, err))
	}
	last := v.tail()
	for last.slots[v.n] != handle.Nil {
		last = v.segment(last.slots[v.n])
	}
	for range add {
		last = v.grow(last)
	}
	v.hdr.spare += add
}

// Delete frees every segment, the header included. The view must not be
// used afterwards.
func (v *Array) Delete() error {
	var hs []handle.Handle
	for s := v.hdr; ; {
		hs = append(hs, s.self)
		next := s.slots[v.n]
		if next == handle.Nil {
			break
		}
		s = v.segment(next)
	}
	for _, h := range hs {
		if err := v.a.FreeHandle(h); err != nil {
			return err
		}
	}
	v.hdr = nil
	return nil
}

// All yields the elements in index order, walking the chain once.
func (v *Array) All() iter.Seq2[int, handle.Handle] {
	return func(yield func(int, handle.Handle) bool) {
		i := 0
		for s := v.hdr; ; s = v.segment(s.slots[v.n]) {
			used := v.n
			if s.self == v.hdr.tail {
				used = int(v.hdr.tailSize)
			}
			for _, h := range s.slots[:used] {
				if !yield(i, h) {
					return
				}
				i++
			}
			if s.self == v.hdr.tail {
				return
			}
		}
	}
}

// Values returns a copy of the elements in index order.
func (v *Array) Values() []handle.Handle {
	hs := make([]handle.Handle, 0, v.TotalSize())
	for _, h := range v.All() {
		hs = append(hs, h)
	}
	return hs
}

func (v *Array) tail() *Segment {
	if v.hdr.tail == v.hdr.self {
		return v.hdr
	}
	return v.segment(v.hdr.tail)
}

// locate translates an in range element index to its segment and offset.
func (v *Array) locate(i int) (*Segment, int) {
	seg, off := i/v.n, i%v.n
	switch seg {
	case 0:
		return v.hdr, off
	case int(v.hdr.tailCount):
		return v.tail(), off
	}
	s := v.hdr
	for range seg {
		s = v.segment(s.slots[v.n])
	}
	return s, off
}

func (v *Array) grow(after *Segment) *Segment {
	r, s := arena.Alloc[Segment](v.a)
	s.self = r.Handle()
	s.header = v.hdr.self
	s.prev = after.self
	s.slots = make([]handle.Handle, v.n+1)
	after.slots[v.n] = s.self
	return s
}

// segment dereferences a chain link. Links are only ever written by this
// package, a failure means the chain was corrupted or freed under the view.
func (v *Array) segment(h handle.Handle) *Segment {
	s, err := arena.Deref(v.a, handle.Of[Segment](h))
	if err != nil {
		panic(fmt.Errorf("%w: %v", ErrCorruptLink, err))
	}
	return s
}
