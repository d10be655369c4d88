// Package symtab interns the names used by a database scope.
//
// Each distinct string is stored once and identified by a dense Index.
// Index zero is reserved so that the zero value of an Index field means "no
// name". A symbol also carries the handles of the records that are named by
// it, which is what name based lookups are built on.
package symtab

import (
	"fmt"
	"iter"
	"slices"

	"fortio.org/safecast"
	"github.com/forestrie/go-celldb/handle"
)

type Index uint32

// InvalidIndex is returned for the empty name and for names not in the
// table.
const InvalidIndex Index = 0

type symbol struct {
	name string
	refs []handle.Handle
}

type Table struct {
	symbols []symbol
	index   map[string]Index
}

func New() *Table {
	return &Table{
		// the reserved entry at InvalidIndex
		symbols: []symbol{{}},
		index:   make(map[string]Index),
	}
}

// GetOrCreate returns the index of name, adding it if necessary.
func (t *Table) GetOrCreate(name string) Index {
	if name == "" {
		return InvalidIndex
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	n, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbol table exhausted: %w", err))
	}
	i := Index(n)
	t.symbols = append(t.symbols, symbol{name: name})
	t.index[name] = i
	return i
}

// Lookup returns the index of an existing name, or InvalidIndex.
func (t *Table) Lookup(name string) Index {
	return t.index[name]
}

func (t *Table) Contains(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Symbol(i Index) (string, bool) {
	if i == InvalidIndex || int(i) >= len(t.symbols) {
		return "", false
	}
	return t.symbols[i].name, true
}

// Len is the number of interned names, not counting the reserved entry.
func (t *Table) Len() int { return len(t.symbols) - 1 }

// AddReference records that the record h is named by symbol i. Adding the
// same reference twice is a no-op.
func (t *Table) AddReference(i Index, h handle.Handle) bool {
	if i == InvalidIndex || int(i) >= len(t.symbols) || h == handle.Nil {
		return false
	}
	s := &t.symbols[i]
	if slices.Contains(s.refs, h) {
		return true
	}
	s.refs = append(s.refs, h)
	return true
}

func (t *Table) RemoveReference(i Index, h handle.Handle) bool {
	if i == InvalidIndex || int(i) >= len(t.symbols) {
		return false
	}
	s := &t.symbols[i]
	j := slices.Index(s.refs, h)
	if j < 0 {
		return false
	}
	s.refs = slices.Delete(s.refs, j, j+1)
	return true
}

// References returns the handles named by symbol i, oldest first. The
// returned slice must not be modified.
func (t *Table) References(i Index) []handle.Handle {
	if i == InvalidIndex || int(i) >= len(t.symbols) {
		return nil
	}
	return t.symbols[i].refs
}

// All yields every interned name in index order.
func (t *Table) All() iter.Seq2[Index, string] {
	return func(yield func(Index, string) bool) {
		for i := 1; i < len(t.symbols); i++ {
			if !yield(Index(i), t.symbols[i].name) {
				return
			}
		}
	}
}
