package tech

import (
	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/chunked"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

// listRef is the handle of a child list. Lists are only allocated when the
// first child is added.
type listRef[T any] = handle.Ref[chunked.Array[T]]

// openList returns the list behind *list, allocating it first if needed.
// Add methods call it before creating the record that goes in the list.
func openList[T any](c *cell.Cell, list *listRef[T]) (*chunked.Array[T], error) {
	if list.IsNil() {
		r, a := cell.CreateArray[T](c)
		*list = r
		return a, nil
	}
	return cell.Addr(c, *list)
}

func appendChild[T any](c *cell.Cell, list *listRef[T], v T) error {
	a, err := openList(c, list)
	if err != nil {
		return err
	}
	a.PushBack(v)
	return nil
}

func children[T any](c *cell.Cell, list listRef[T]) ([]T, error) {
	if list.IsNil() {
		return nil, nil
	}
	a, err := cell.Addr(c, list)
	if err != nil {
		return nil, err
	}
	return a.Values(), nil
}

func childCount[T any](c *cell.Cell, list listRef[T]) int {
	if list.IsNil() {
		return 0
	}
	a, err := cell.Addr(c, list)
	if err != nil {
		return 0
	}
	return a.Size()
}

// freeList releases the list record itself, not the records it references.
func freeList[T any](c *cell.Cell, list *listRef[T]) error {
	if list.IsNil() {
		return nil
	}
	if err := cell.Destroy(c, *list); err != nil {
		return err
	}
	*list = listRef[T]{}
	return nil
}

// deleteNamed frees every record in a list of named records and drops their
// name references. The list itself is left for the caller.
func deleteNamed[T any](c *cell.Cell, list listRef[handle.Ref[T]], name func(*T) symtab.Index) error {
	refs, err := children(c, list)
	if err != nil {
		return err
	}
	for _, r := range refs {
		v, err := cell.Addr(c, r)
		if err != nil {
			return err
		}
		c.Unname(r.Handle(), name(v))
		if err := cell.Destroy(c, r); err != nil {
			return err
		}
	}
	return nil
}

type arrayOf32 = chunked.Array[int32]
