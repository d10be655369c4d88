package segmented

import (
	"testing"

	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
}

// newItems allocates n records to stand in for array elements.
func newItems(t *testing.T, a *arena.Arena, n int) []handle.Handle {
	t.Helper()
	hs := make([]handle.Handle, n)
	for i := range n {
		r, _ := arena.Alloc[item](a)
		hs[i] = r.Handle()
	}
	return hs
}

func iterate(v *Array) []handle.Handle {
	var hs []handle.Handle
	for it := v.Begin(); it != v.End(); it.Next() {
		hs = append(hs, it.Value())
	}
	return hs
}

func TestNewRejectsBadSize(t *testing.T) {
	a := arena.New()
	for _, n := range []Size{0, 1, 3, SizeHighest + 1} {
		_, err := New(a, n)
		assert.ErrorIs(t, err, ErrSegmentSize)
	}
}

func TestEmpty(t *testing.T) {
	a := arena.New()
	v, err := New(a, Size8)
	require.NoError(t, err)

	assert.Equal(t, 0, v.TotalSize())
	assert.Equal(t, 7, v.TotalCapacity())
	assert.Equal(t, 1, v.SegmentCount())
	assert.True(t, v.Begin() == v.End())

	_, ok := v.PopBack()
	assert.False(t, ok)
	_, ok = v.Get(0)
	assert.False(t, ok)
	assert.False(t, v.Remove(handle.New(a.Number(), 1)))
}

func TestPushPopOrder(t *testing.T) {
	tests := []struct {
		name string
		size Size
		n    int
	}{
		{"within the header", Size8, 5},
		{"exactly the header", Size8, 7},
		{"one past the header", Size8, 8},
		{"many segments", SizeMin, 40},
		{"large segments", Size256, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := arena.New()
			v, err := New(a, tt.size)
			require.NoError(t, err)

			hs := newItems(t, a, tt.n)
			for _, h := range hs {
				v.PushBack(h)
			}
			assert.Equal(t, tt.n, v.TotalSize())
			assert.Equal(t, hs, iterate(v))
			assert.Equal(t, hs, v.Values())

			for i := tt.n - 1; i >= 0; i-- {
				h, ok := v.PopBack()
				require.True(t, ok)
				assert.Equal(t, hs[i], h)
			}
			assert.Equal(t, 0, v.TotalSize())
			assert.Equal(t, 1, v.SegmentCount())
			assert.True(t, v.Begin() == v.End())

			// the header survives the array being emptied
			_, err = Open(a, v.Ref())
			assert.NoError(t, err)
		})
	}
}

func TestSegmentCounts(t *testing.T) {
	a := arena.New()
	for _, size := range []Size{SizeMin, Size8, Size16, Size32} {
		usable := int(size) - 1
		for k := range 4 {
			v, err := New(a, size)
			require.NoError(t, err)
			hs := newItems(t, a, k*usable+1)
			for _, h := range hs {
				v.PushBack(h)
			}
			assert.Equal(t, k+1, v.SegmentCount(), "size %d k %d", size, k)
			assert.Equal(t, k, v.TailCount())
			assert.Equal(t, 1, v.TailSize())
			assert.Equal(t, (k+1)*usable, v.TotalCapacity())
			assert.Equal(t, hs, iterate(v))
			for i, h := range hs {
				got, ok := v.Get(i)
				require.True(t, ok)
				assert.Equal(t, h, got)
			}
		}
	}
}

func TestReserve(t *testing.T) {
	a := arena.New()
	v, err := New(a, Size16)
	require.NoError(t, err)

	v.Reserve(100)
	assert.Equal(t, 7, v.SegmentCount())
	assert.Equal(t, 105, v.TotalCapacity())
	assert.Equal(t, 0, v.TotalSize())
	issued := a.Issued()

	hs := newItems(t, a, 100)
	for _, h := range hs {
		v.PushBack(h)
	}
	// no segment was allocated by the pushes
	assert.Equal(t, issued+100, a.Issued())
	assert.Equal(t, 7, v.SegmentCount())
	assert.Equal(t, 100, v.TotalSize())

	for i, h := range hs {
		got, ok := v.Get(i)
		require.True(t, ok)
		assert.Equal(t, h, got)
	}
	assert.Equal(t, hs, iterate(v))

	v.Reserve(10)
	assert.Equal(t, 7, v.SegmentCount())
}

func TestPopKeepsSpares(t *testing.T) {
	a := arena.New()
	v, err := New(a, SizeMin)
	require.NoError(t, err)

	hs := newItems(t, a, 4)
	for _, h := range hs {
		v.PushBack(h)
	}
	v.Reserve(12)
	require.Equal(t, 4, v.SegmentCount())

	// dropping the element in the second segment frees it, the spares stay
	_, ok := v.PopBack()
	require.True(t, ok)
	assert.Equal(t, 3, v.SegmentCount())
	assert.Equal(t, 9, v.TotalCapacity())

	more := newItems(t, a, 6)
	for _, h := range more {
		v.PushBack(h)
	}
	assert.Equal(t, 3, v.SegmentCount())
	assert.Equal(t, append(hs[:3:3], more...), iterate(v))
}

func TestSet(t *testing.T) {
	a := arena.New()
	v, err := New(a, SizeMin)
	require.NoError(t, err)

	hs := newItems(t, a, 8)
	for i, h := range hs[:6] {
		require.True(t, v.Set(i, h))
	}
	assert.False(t, v.Set(7, hs[7]))
	assert.False(t, v.Set(-1, hs[7]))

	require.True(t, v.Set(4, hs[7]))
	got, ok := v.Get(4)
	require.True(t, ok)
	assert.Equal(t, hs[7], got)
	assert.Equal(t, 6, v.TotalSize())
}

func TestRemove(t *testing.T) {
	a := arena.New()
	hs := newItems(t, a, 4)
	x, av, b, c := hs[0], hs[1], hs[2], hs[3]

	tests := []struct {
		name   string
		size   Size
		remove handle.Handle
		want   []handle.Handle
	}{
		{"middle", Size8, x, []handle.Handle{av, b, c}},
		{"last", Size8, c, []handle.Handle{av, b, x}},
		{"first", Size8, av, []handle.Handle{c, b, x}},
		{"across segments", SizeMin, av, []handle.Handle{c, b, x}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(a, tt.size)
			require.NoError(t, err)
			for _, h := range []handle.Handle{av, b, x, c} {
				v.PushBack(h)
			}
			require.True(t, v.Remove(tt.remove))
			assert.Equal(t, tt.want, iterate(v))
			assert.Equal(t, 3, v.TotalSize())
			assert.False(t, v.Remove(tt.remove))
		})
	}
}

func TestThreeSlotScenario(t *testing.T) {
	t.Run("push five pop two", func(t *testing.T) {
		a := arena.New()
		v, err := New(a, SizeMin)
		require.NoError(t, err)

		hs := newItems(t, a, 5)
		for _, h := range hs {
			v.PushBack(h)
		}
		assert.Equal(t, 2, v.SegmentCount())
		assert.Equal(t, 5, v.TotalSize())
		assert.Equal(t, 1, v.TailCount())
		assert.Equal(t, 2, v.TailSize())

		h, ok := v.PopBack()
		require.True(t, ok)
		assert.Equal(t, hs[4], h)
		assert.Equal(t, 2, v.SegmentCount())
		assert.Equal(t, 1, v.TailSize())

		// the emptied tail is freed and the header is full again
		h, ok = v.PopBack()
		require.True(t, ok)
		assert.Equal(t, hs[3], h)
		assert.Equal(t, 1, v.SegmentCount())
		assert.Equal(t, 0, v.TailCount())
		assert.Equal(t, 3, v.TailSize())
		assert.Equal(t, 3, v.TotalSize())
		assert.Equal(t, hs[:3], iterate(v))
	})

	t.Run("remove collapses tail", func(t *testing.T) {
		a := arena.New()
		v, err := New(a, SizeMin)
		require.NoError(t, err)

		hs := newItems(t, a, 7)
		for _, h := range hs {
			v.PushBack(h)
		}
		assert.Equal(t, 3, v.SegmentCount())
		assert.Equal(t, 1, v.TailSize())
		assert.Equal(t, 2, v.TailCount())

		f, ok := v.Get(5)
		require.True(t, ok)
		assert.Equal(t, hs[5], f)

		// removing b moves g into its place and frees the third segment
		require.True(t, v.Remove(hs[1]))
		assert.Equal(t, 6, v.TotalSize())
		assert.Equal(t, 2, v.SegmentCount())
		assert.Equal(t, 3, v.TailSize())
		assert.Equal(t, []handle.Handle{hs[0], hs[6], hs[2], hs[3], hs[4], hs[5]}, iterate(v))
	})
}

func TestOpen(t *testing.T) {
	a := arena.New()
	v, err := New(a, SizeMin)
	require.NoError(t, err)
	hs := newItems(t, a, 5)
	for _, h := range hs {
		v.PushBack(h)
	}

	w, err := Open(a, v.Ref())
	require.NoError(t, err)
	assert.Equal(t, hs, w.Values())
	assert.Equal(t, SizeMin, w.SegmentSize())

	tail, err := arena.Deref(a, handle.Of[Segment](v.hdr.tail))
	require.NoError(t, err)
	assert.False(t, tail.IsHeader())
	_, err = Open(a, handle.Of[Segment](tail.self))
	assert.ErrorIs(t, err, ErrNotHeader)

	_, err = Open(a, handle.Of[Segment](hs[0]))
	assert.ErrorIs(t, err, arena.ErrKindMismatch)
}

func TestDelete(t *testing.T) {
	a := arena.New()
	v, err := New(a, SizeMin)
	require.NoError(t, err)
	for _, h := range newItems(t, a, 10) {
		v.PushBack(h)
	}
	v.Reserve(20)
	ref := v.Ref()

	require.NoError(t, v.Delete())
	_, err = Open(a, ref)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)

	k, ok := arena.KindFor[Segment](a)
	require.True(t, ok)
	for _, p := range a.Stats().Pools {
		if p.Kind == k {
			assert.Equal(t, 0, p.Live)
		}
	}
}

func TestAllStopsEarly(t *testing.T) {
	a := arena.New()
	v, err := New(a, SizeMin)
	require.NoError(t, err)
	hs := newItems(t, a, 9)
	for _, h := range hs {
		v.PushBack(h)
	}
	var got []handle.Handle
	for i, h := range v.All() {
		if i == 5 {
			break
		}
		got = append(got, h)
	}
	assert.Equal(t, hs[:5], got)
}
