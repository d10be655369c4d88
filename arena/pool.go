package arena

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/forestrie/go-celldb/handle"
)

// pooler is the type erased view of a pool used for freeing and reporting.
type pooler interface {
	kind() handle.Kind
	typeName() string
	release(slot uint32)
	stats() PoolStats
}

// pool holds every record of a single type. Records live in fixed length
// pages that are never moved, freed slots are recycled most recent first.
type pool[T any] struct {
	k       handle.Kind
	name    string
	pageLen int
	pages   [][]T
	carved  int
	free    []uint32
	live    int
}

func newPool[T any](k handle.Kind, pageLen int) *pool[T] {
	var zero T
	return &pool[T]{
		k:       k,
		name:    fmt.Sprintf("%T", zero),
		pageLen: pageLen,
	}
}

func (p *pool[T]) kind() handle.Kind { return p.k }
func (p *pool[T]) typeName() string  { return p.name }

// take returns a zeroed slot, reusing a freed one when available.
func (p *pool[T]) take() (uint32, *T) {
	p.live++
	if n := len(p.free); n > 0 {
		slot := p.free[n-1]
		p.free = p.free[:n-1]
		return slot, p.at(slot)
	}

	if p.carved == len(p.pages)*p.pageLen {
		p.pages = append(p.pages, make([]T, p.pageLen))
	}
	slot, err := safecast.Conv[uint32](p.carved)
	if err != nil {
		panic(fmt.Errorf("%s pool exhausted: %w", p.name, err))
	}
	p.carved++
	return slot, p.at(slot)
}

func (p *pool[T]) at(slot uint32) *T {
	i := int(slot)
	return &p.pages[i/p.pageLen][i%p.pageLen]
}

func (p *pool[T]) release(slot uint32) {
	var zero T
	*p.at(slot) = zero
	p.free = append(p.free, slot)
	p.live--
}

func (p *pool[T]) stats() PoolStats {
	return PoolStats{
		Kind:         p.k,
		Type:         p.name,
		Pages:        len(p.pages),
		SlotsPerPage: p.pageLen,
		Carved:       p.carved,
		Live:         p.live,
		Free:         len(p.free),
	}
}
