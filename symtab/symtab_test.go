package symtab

import (
	"testing"

	"github.com/forestrie/go-celldb/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	st := New()

	m1 := st.GetOrCreate("M1")
	assert.NotEqual(t, InvalidIndex, m1)
	assert.Equal(t, m1, st.GetOrCreate("M1"))

	m2 := st.GetOrCreate("M2")
	assert.NotEqual(t, m1, m2)

	assert.Equal(t, InvalidIndex, st.GetOrCreate(""))
	assert.Equal(t, 2, st.Len())

	name, ok := st.Symbol(m1)
	require.True(t, ok)
	assert.Equal(t, "M1", name)

	_, ok = st.Symbol(InvalidIndex)
	assert.False(t, ok)
	_, ok = st.Symbol(Index(99))
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	st := New()
	via := st.GetOrCreate("VIA12")

	tests := []struct {
		name string
		want Index
	}{
		{"VIA12", via},
		{"via12", InvalidIndex},
		{"", InvalidIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.Lookup(tt.name))
			assert.Equal(t, tt.want != InvalidIndex, st.Contains(tt.name))
		})
	}
	assert.Equal(t, 1, st.Len())
}

func TestReferences(t *testing.T) {
	st := New()
	i := st.GetOrCreate("poly")
	h1, h2 := handle.New(1, 1), handle.New(1, 2)

	assert.True(t, st.AddReference(i, h1))
	assert.True(t, st.AddReference(i, h2))
	assert.True(t, st.AddReference(i, h1))
	assert.Equal(t, []handle.Handle{h1, h2}, st.References(i))

	assert.False(t, st.AddReference(InvalidIndex, h1))
	assert.False(t, st.AddReference(i, handle.Nil))

	assert.True(t, st.RemoveReference(i, h1))
	assert.False(t, st.RemoveReference(i, h1))
	assert.Equal(t, []handle.Handle{h2}, st.References(i))
	assert.Nil(t, st.References(Index(42)))
}

func TestAll(t *testing.T) {
	st := New()
	names := []string{"metal1", "via1", "metal2"}
	for _, n := range names {
		st.GetOrCreate(n)
	}
	var got []string
	for i, n := range st.All() {
		assert.Equal(t, i, st.Lookup(n))
		got = append(got, n)
	}
	assert.Equal(t, names, got)
}
