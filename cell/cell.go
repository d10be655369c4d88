// Package cell provides the owning scope for pooled database records.
//
// A Cell owns an arena, a symbol table and the handle of its schema root.
// It is the only creator and destroyer of records: every record allocated
// through it is tagged with the cell as owner, and every record dies with
// the cell when it is closed.
//
// A Cell is single threaded. Use Guarded to share one between goroutines.
package cell

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/chunked"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/segmented"
	"github.com/forestrie/go-celldb/symtab"
	"github.com/google/uuid"
)

var (
	ErrClosed   = errors.New("the cell is closed")
	ErrNotFound = errors.New("no record of the requested type has that name")
)

// header is the cell's own record. It is the first record in the arena and
// its handle is the owner tag of every other record.
type header struct {
	Name symtab.Index
	Root handle.Handle
}

type Cell struct {
	id     uuid.UUID
	opts   Options
	log    logger.Logger
	arena  *arena.Arena
	syms   *symtab.Table
	self   handle.Ref[header]
	hdr    *header
	closed bool
}

func New(name string, opts ...Option) (*Cell, error) {
	o := NewOptions(opts...)
	if !o.SegmentSize.Valid() {
		return nil, fmt.Errorf("%w: %d", segmented.ErrSegmentSize, o.SegmentSize)
	}
	id := o.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewRandom(); err != nil {
			return nil, err
		}
	}

	c := &Cell{
		id:    id,
		opts:  o,
		log:   o.Log,
		arena: arena.New(arena.WithPageSlots(o.PageSlots)),
		syms:  symtab.New(),
	}
	c.self, c.hdr = arena.Alloc[header](c.arena)
	c.arena.SetOwner(c.self.Handle())
	c.hdr.Name = c.syms.GetOrCreate(name)

	c.infof("cell %q %s opened, arena %d", name, id, c.arena.Number())
	return c, nil
}

func (c *Cell) ID() uuid.UUID { return c.id }

func (c *Cell) Name() string {
	name, _ := c.syms.Symbol(c.hdr.Name)
	return name
}

// Handle is the cell's own handle, the owner of every record it creates.
func (c *Cell) Handle() handle.Handle { return c.self.Handle() }

func (c *Cell) Options() Options { return c.opts }

func (c *Cell) Arena() *arena.Arena { return c.arena }

func (c *Cell) Symbols() *symtab.Table { return c.syms }

// Root returns the handle of the schema root, Nil until SetRoot is called.
func (c *Cell) Root() handle.Handle { return c.hdr.Root }

func (c *Cell) SetRoot(h handle.Handle) { c.hdr.Root = h }

func (c *Cell) Closed() bool { return c.closed }

// Create allocates a zeroed record owned by the cell. It panics if the cell
// is closed.
func Create[T any](c *Cell) (handle.Ref[T], *T) {
	if c.closed {
		panic(ErrClosed)
	}
	return arena.Alloc[T](c.arena)
}

// Addr resolves a typed handle to its record.
func Addr[T any](c *Cell, r handle.Ref[T]) (*T, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return arena.Deref(c.arena, r)
}

func Destroy[T any](c *Cell, r handle.Ref[T]) error {
	if c.closed {
		return ErrClosed
	}
	if err := arena.Free(c.arena, r); err != nil {
		return err
	}
	c.debugf("destroyed %v", r)
	return nil
}

// DestroyHandle frees a record knowing only its handle.
func (c *Cell) DestroyHandle(h handle.Handle) error {
	if c.closed {
		return ErrClosed
	}
	return c.arena.FreeHandle(h)
}

// CreateArray allocates an empty chunked array record with the default
// reserve already in place.
func CreateArray[T any](c *Cell) (handle.Ref[chunked.Array[T]], *chunked.Array[T]) {
	r, a := Create[chunked.Array[T]](c)
	a.Reserve(chunked.DefaultReserve)
	return r, a
}

// CreateVector allocates an empty segmented array using the cell's segment
// size.
func CreateVector(c *Cell) (*segmented.Array, error) {
	if c.closed {
		return nil, ErrClosed
	}
	v, err := segmented.New(c.arena, c.opts.SegmentSize)
	if err != nil {
		return nil, err
	}
	c.debugf("vector %v created, segment size %d", v.Ref(), c.opts.SegmentSize)
	return v, nil
}

func OpenVector(c *Cell, r handle.Ref[segmented.Segment]) (*segmented.Array, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return segmented.Open(c.arena, r)
}

func (c *Cell) GetOrCreateSymbol(name string) symtab.Index {
	return c.syms.GetOrCreate(name)
}

func (c *Cell) SymbolByIndex(i symtab.Index) (string, bool) {
	return c.syms.Symbol(i)
}

// OwnerOf returns the owner recorded for a live record.
func (c *Cell) OwnerOf(h handle.Handle) (handle.Handle, bool) {
	if c.closed {
		return handle.Nil, false
	}
	return c.arena.OwnerOf(h)
}

// Stats summarises the memory held by the cell's pools.
func (c *Cell) Stats() arena.Stats { return c.arena.Stats() }

func (c *Cell) LogUsage() {
	c.infof("cell %q usage\n%s", c.Name(), c.arena.Stats())
}

// Close releases every record. Handles into the cell fail with ErrClosed
// afterwards.
func (c *Cell) Close() {
	if c.closed {
		return
	}
	c.infof("cell %q %s closed, %d records released", c.Name(), c.id, c.arena.Stats().Live())
	c.arena.Release()
	c.closed = true
}

func (c *Cell) infof(format string, args ...any) {
	if c.log != nil {
		c.log.Infof(format, args...)
	}
}

func (c *Cell) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}
