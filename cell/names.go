package cell

import (
	"fmt"

	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

// NameRecord interns name and records h as one of the records it names.
func (c *Cell) NameRecord(h handle.Handle, name string) symtab.Index {
	i := c.syms.GetOrCreate(name)
	c.syms.AddReference(i, h)
	return i
}

// Unname removes h from the records named by i.
func (c *Cell) Unname(h handle.Handle, i symtab.Index) {
	c.syms.RemoveReference(i, h)
}

// FindByName returns the first live record of type T named name. Records of
// other types sharing the name are skipped, a layer and a via may both be
// called "M1".
func FindByName[T any](c *Cell, name string) (handle.Ref[T], *T, error) {
	if c.closed {
		return handle.Ref[T]{}, nil, ErrClosed
	}
	i := c.syms.Lookup(name)
	for _, h := range c.syms.References(i) {
		if !arena.Is[T](c.arena, h) {
			continue
		}
		r := handle.Of[T](h)
		v, err := arena.Deref(c.arena, r)
		if err != nil {
			return handle.Ref[T]{}, nil, err
		}
		return r, v, nil
	}
	var zero T
	return handle.Ref[T]{}, nil, fmt.Errorf("%w: %T %q", ErrNotFound, zero, name)
}
