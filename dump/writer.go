// Package dump renders the logical contents of a cell as text.
//
// Arrays are always written element by element. The page and segment layout
// of the arena never appears in the output, so two cells with the same
// schema dump identically.
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/chunked"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/segmented"
	"github.com/forestrie/go-celldb/symtab"
)

// printer keeps the first write error so rendering code can ignore it until
// the end.
type printer struct {
	w     io.Writer
	c     *cell.Cell
	depth int
	err   error
}

func newPrinter(w io.Writer, c *cell.Cell) *printer {
	return &printer{w: w, c: c}
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", p.depth)}, args...)...)
}

func (p *printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *printer) name(i symtab.Index) string {
	if s, ok := p.c.SymbolByIndex(i); ok {
		return s
	}
	return "<unnamed>"
}

// Vector writes a segmented array of handles.
func Vector(w io.Writer, c *cell.Cell, v *segmented.Array) error {
	p := newPrinter(w, c)
	p.line("VECTOR %v SIZE %d SEGMENTS %d CAPACITY %d",
		v.Ref(), v.TotalSize(), v.SegmentCount(), v.TotalCapacity())
	p.depth++
	for i, h := range v.All() {
		p.line("%d %s", i, p.describe(h))
	}
	p.depth--
	p.line("END VECTOR")
	return p.err
}

// Array writes a chunked array, formatting each element with %v.
func Array[T any](w io.Writer, name string, a *chunked.Array[T]) error {
	p := &printer{w: w}
	p.line("ARRAY %s SIZE %d CAPACITY %d", name, a.Size(), a.Cap())
	p.depth++
	for i, v := range a.All() {
		p.line("%d %v", i, v)
	}
	p.depth--
	p.line("END ARRAY")
	return p.err
}

// describe names the record a handle references.
func (p *printer) describe(h handle.Handle) string {
	a := p.c.Arena()
	k, ok := a.KindOf(h)
	if !ok {
		return fmt.Sprintf("%v <dead>", h)
	}
	return fmt.Sprintf("%v %s", h, a.TypeName(k))
}
