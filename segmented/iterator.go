package segmented

import "github.com/forestrie/go-celldb/handle"

// Iterator is a cursor over the elements of an Array. Iterators compare
// equal with == when they address the same slot.
//
//	for it := v.Begin(); it != v.End(); it.Next() {
//		use(it.Value())
//	}
type Iterator struct {
	v   *Array
	seg *Segment
	pos int
}

func (v *Array) Begin() Iterator {
	return Iterator{v: v, seg: v.hdr, pos: 0}
}

// End addresses the slot one past the last element of the tail.
func (v *Array) End() Iterator {
	return Iterator{v: v, seg: v.tail(), pos: int(v.hdr.tailSize)}
}

// Next advances the cursor, following the link slot when it steps off the
// last data slot of a segment that is not the tail.
func (it *Iterator) Next() {
	it.pos++
	if it.pos < it.v.n || it.seg.self == it.v.hdr.tail {
		return
	}
	if next := it.seg.slots[it.v.n]; next != handle.Nil {
		it.seg = it.v.segment(next)
		it.pos = 0
	}
}

func (it Iterator) Value() handle.Handle {
	return it.seg.slots[it.pos]
}
