// Package arena implements the typed record pools every database object is
// allocated from.
//
// Each Go type gets its own pool of fixed size pages. A record never moves
// once allocated, so a *T obtained from Deref stays valid until the record
// is freed. Records are addressed by handle.Ref values. A directory indexed
// by handle sequence resolves a handle to its pool slot in constant time
// and remembers enough to reject nil, foreign, stale and mistyped handles.
//
// An Arena is not safe for concurrent use.
package arena

import (
	"fmt"
	"iter"
	"reflect"
	"sync/atomic"

	"fortio.org/safecast"
	"github.com/forestrie/go-celldb/handle"
)

// arenaNumbers issues the arena component of every handle. It is the only
// process wide state and it only ever counts up.
var arenaNumbers atomic.Uint32

type Arena struct {
	number   uint32
	seq      uint64
	opts     Options
	dir      directory
	pools    []pooler
	kinds    map[reflect.Type]handle.Kind
	released bool
}

func New(opts ...Option) *Arena {
	n := arenaNumbers.Add(1)
	if uint64(n) > handle.MaxArena {
		panic("arena: arena numbers exhausted")
	}
	return &Arena{
		number: n,
		opts:   NewOptions(opts...),
		kinds:  make(map[reflect.Type]handle.Kind),
	}
}

// Number returns the arena component carried by every handle this arena
// issues.
func (a *Arena) Number() uint32 { return a.number }

func (a *Arena) Owner() handle.Handle { return a.opts.Owner }

// SetOwner changes the owner recorded for subsequent Alloc calls.
func (a *Arena) SetOwner(owner handle.Handle) { a.opts.Owner = owner }

// Issued returns the number of handles issued so far, live or not.
func (a *Arena) Issued() uint64 { return a.seq }

// Alloc reserves a zeroed record of type T owned by the arena's default
// owner.
func Alloc[T any](a *Arena) (handle.Ref[T], *T) {
	return AllocOwned[T](a, a.opts.Owner)
}

// AllocOwned reserves a zeroed record of type T and tags it with owner.
// Allocation never invalidates previously issued handles or pointers.
func AllocOwned[T any](a *Arena, owner handle.Handle) (handle.Ref[T], *T) {
	if a.released {
		panic(ErrReleased)
	}
	p := poolFor[T](a)
	slot, v := p.take()
	h := a.issue()
	a.dir.put(h.Seq(), entry{kind: p.k, slot: slot, owner: owner})
	return handle.Of[T](h), v
}

// Deref resolves r to its record.
func Deref[T any](a *Arena, r handle.Ref[T]) (*T, error) {
	e, err := a.lookup(r.Handle())
	if err != nil {
		return nil, err
	}
	k, ok := a.kinds[reflect.TypeFor[T]()]
	if !ok || k != e.kind {
		var zero T
		return nil, fmt.Errorf(
			"%w: %v holds %s not %T", ErrKindMismatch, r, a.pools[e.kind-1].typeName(), zero)
	}
	return a.pools[k-1].(*pool[T]).at(e.slot), nil
}

// Free returns the record to its pool. The handle is dead from here on, even
// if a later allocation reuses the slot.
func Free[T any](a *Arena, r handle.Ref[T]) error {
	if _, err := Deref(a, r); err != nil {
		return err
	}
	return a.FreeHandle(r.Handle())
}

// FreeHandle is the untyped form of Free, for callers that only hold a
// handle.Handle, such as the elements of a handle array.
func (a *Arena) FreeHandle(h handle.Handle) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	a.pools[e.kind-1].release(e.slot)
	*e = entry{}
	return nil
}

// Live reports whether h currently references a record.
func (a *Arena) Live(h handle.Handle) bool {
	_, err := a.lookup(h)
	return err == nil
}

// KindOf returns the kind of the live record h references.
func (a *Arena) KindOf(h handle.Handle) (handle.Kind, bool) {
	e, err := a.lookup(h)
	if err != nil {
		return handle.NoKind, false
	}
	return e.kind, true
}

// OwnerOf returns the owner tagged when h was allocated.
func (a *Arena) OwnerOf(h handle.Handle) (handle.Handle, bool) {
	e, err := a.lookup(h)
	if err != nil {
		return handle.Nil, false
	}
	return e.owner, true
}

// KindFor returns the kind assigned to T, if any record of type T has been
// allocated.
func KindFor[T any](a *Arena) (handle.Kind, bool) {
	k, ok := a.kinds[reflect.TypeFor[T]()]
	return k, ok
}

// Is reports whether h is a live record of type T.
func Is[T any](a *Arena, h handle.Handle) bool {
	k, ok := KindFor[T](a)
	if !ok {
		return false
	}
	got, ok := a.KindOf(h)
	return ok && got == k
}

// TypeName returns the Go type name of the records of kind k.
func (a *Arena) TypeName(k handle.Kind) string {
	if k == handle.NoKind || int(k) > len(a.pools) {
		return ""
	}
	return a.pools[k-1].typeName()
}

// All iterates the live records of type T in allocation order.
func All[T any](a *Arena) iter.Seq2[handle.Ref[T], *T] {
	return func(yield func(handle.Ref[T], *T) bool) {
		k, ok := KindFor[T](a)
		if !ok || a.released {
			return
		}
		p := a.pools[k-1].(*pool[T])
		for seq := uint64(1); seq <= a.seq; seq++ {
			e := a.dir.at(seq)
			if e.kind != k {
				continue
			}
			if !yield(handle.Of[T](handle.New(a.number, seq)), p.at(e.slot)) {
				return
			}
		}
	}
}

// Release drops every page. All handles issued by the arena become invalid.
func (a *Arena) Release() {
	a.pools = nil
	a.dir = directory{}
	a.kinds = make(map[reflect.Type]handle.Kind)
	a.released = true
}

func (a *Arena) issue() handle.Handle {
	if a.seq == handle.MaxSeq {
		panic(fmt.Errorf("arena %d: handle sequence exhausted", a.number))
	}
	a.seq++
	return handle.New(a.number, a.seq)
}

func (a *Arena) lookup(h handle.Handle) (*entry, error) {
	switch {
	case h == handle.Nil:
		return nil, ErrNilHandle
	case a.released:
		return nil, ErrReleased
	case h.Arena() != a.number:
		return nil, fmt.Errorf("%w: %v in arena %d", ErrForeignHandle, h, a.number)
	case h.Seq() > a.seq:
		return nil, fmt.Errorf("%w: %v", ErrHandleRange, h)
	}
	e := a.dir.at(h.Seq())
	if e.kind == handle.NoKind {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	return e, nil
}

func poolFor[T any](a *Arena) *pool[T] {
	t := reflect.TypeFor[T]()
	if k, ok := a.kinds[t]; ok {
		return a.pools[k-1].(*pool[T])
	}
	n, err := safecast.Conv[uint16](len(a.pools) + 1)
	if err != nil {
		panic(fmt.Errorf("arena %d: record kinds exhausted: %w", a.number, err))
	}
	k := handle.Kind(n)
	p := newPool[T](k, a.opts.PageSlots)
	a.pools = append(a.pools, p)
	a.kinds[t] = k
	return p
}
