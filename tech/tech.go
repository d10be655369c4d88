// Package tech is the technology rule schema built on pooled records.
//
// The schema is an object graph held entirely in a cell. One-to-many
// relationships are a single handle to a chunked array of child handles,
// created when the first child is added. Records refer to each other only
// by handle. Variant behaviour, such as the kind of rule a layer carries or
// the kind of a spacing rule, is expressed with sealed interfaces over plain
// value types.
package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/segmented"
	"github.com/forestrie/go-celldb/symtab"
)

// Units holds the multipliers of the technology's unit system.
type Units struct {
	DatabaseMicrons int32
	Time            int32
	Capacitance     int32
	Resistance      int32
	Power           int32
	Current         int32
	Voltage         int32
	Frequency       int32
}

// Tech is the schema root of a cell.
type Tech struct {
	Units             handle.Ref[Units]
	ManufacturingGrid int32

	layers   listRef[handle.Ref[Layer]]
	sites    listRef[handle.Ref[Site]]
	viaRules listRef[handle.Ref[ViaRule]]
	props    listRef[handle.Ref[PropertyDefinition]]
	// via masters are numerous enough to warrant a segmented array
	vias handle.Ref[segmented.Segment]
}

// New creates the technology root of c.
func New(c *cell.Cell) (handle.Ref[Tech], *Tech, error) {
	if !c.Root().IsNil() {
		return handle.Ref[Tech]{}, nil, fmt.Errorf("%w: %v", ErrRootExists, c.Root())
	}
	r, t := cell.Create[Tech](c)
	t.Units, _ = cell.Create[Units](c)
	c.SetRoot(r.Handle())
	return r, t, nil
}

// Get returns the technology root of c.
func Get(c *cell.Cell) (*Tech, error) {
	if c.Root().IsNil() {
		return nil, ErrNoTech
	}
	return cell.Addr(c, handle.Of[Tech](c.Root()))
}

func (t *Tech) GetUnits(c *cell.Cell) (*Units, error) {
	return cell.Addr(c, t.Units)
}

func (t *Tech) Sites(c *cell.Cell) ([]handle.Ref[Site], error) {
	return children(c, t.sites)
}

func (t *Tech) ViaRules(c *cell.Cell) ([]handle.Ref[ViaRule], error) {
	return children(c, t.viaRules)
}

func (t *Tech) Properties(c *cell.Cell) ([]handle.Ref[PropertyDefinition], error) {
	return children(c, t.props)
}

func (t *Tech) ViaMasters(c *cell.Cell) ([]handle.Ref[ViaMaster], error) {
	if t.vias.IsNil() {
		return nil, nil
	}
	v, err := cell.OpenVector(c, t.vias)
	if err != nil {
		return nil, err
	}
	refs := make([]handle.Ref[ViaMaster], 0, v.TotalSize())
	for _, h := range v.All() {
		refs = append(refs, handle.Of[ViaMaster](h))
	}
	return refs, nil
}

// Delete frees every record of the schema and clears the cell's root.
func Delete(c *cell.Cell) error {
	t, err := Get(c)
	if err != nil {
		return err
	}
	layers, err := t.Layers(c)
	if err != nil {
		return err
	}
	// highest z first so no renumbering is needed
	for i := len(layers) - 1; i >= 0; i-- {
		if err := t.DeleteLayer(c, layers[i]); err != nil {
			return err
		}
	}
	vias, err := t.ViaMasters(c)
	if err != nil {
		return err
	}
	for _, v := range vias {
		if err := t.DeleteViaMaster(c, v); err != nil {
			return err
		}
	}
	if err := deleteNamed(c, t.sites, func(s *Site) symtab.Index { return s.Name }); err != nil {
		return err
	}
	if err := deleteNamed(c, t.props, func(p *PropertyDefinition) symtab.Index { return p.Name }); err != nil {
		return err
	}
	rules, err := t.ViaRules(c)
	if err != nil {
		return err
	}
	for _, r := range rules {
		if err := deleteViaRule(c, r); err != nil {
			return err
		}
	}
	for _, err := range []error{
		freeList(c, &t.layers), freeList(c, &t.sites), freeList(c, &t.viaRules), freeList(c, &t.props),
	} {
		if err != nil {
			return err
		}
	}
	if !t.vias.IsNil() {
		v, err := cell.OpenVector(c, t.vias)
		if err != nil {
			return err
		}
		if err := v.Delete(); err != nil {
			return err
		}
	}
	if err := cell.Destroy(c, t.Units); err != nil {
		return err
	}
	if err := cell.Destroy(c, handle.Of[Tech](c.Root())); err != nil {
		return err
	}
	c.SetRoot(handle.Nil)
	return nil
}
