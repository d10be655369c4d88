package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

type Rect struct {
	XL, YL, XH, YH int32
}

// ViaShape is one rectangle of a via master on one of its layers.
type ViaShape struct {
	Layer handle.Ref[Layer]
	Rect  Rect
}

type ViaMaster struct {
	Name       symtab.Index
	Default    bool
	Resistance int32

	shapes listRef[ViaShape]
}

// AddViaMaster creates a fixed via.
func (t *Tech) AddViaMaster(c *cell.Cell, name string, isDefault bool) (handle.Ref[ViaMaster], *ViaMaster, error) {
	if name == "" {
		return handle.Ref[ViaMaster]{}, nil, fmt.Errorf("%w: via", ErrEmptyName)
	}
	if _, _, err := cell.FindByName[ViaMaster](c, name); err == nil {
		return handle.Ref[ViaMaster]{}, nil, fmt.Errorf("%w: via %q", ErrDuplicateName, name)
	}
	if t.vias.IsNil() {
		v, err := cell.CreateVector(c)
		if err != nil {
			return handle.Ref[ViaMaster]{}, nil, err
		}
		t.vias = v.Ref()
	}
	v, err := cell.OpenVector(c, t.vias)
	if err != nil {
		return handle.Ref[ViaMaster]{}, nil, err
	}

	r, m := cell.Create[ViaMaster](c)
	m.Name = c.NameRecord(r.Handle(), name)
	m.Default = isDefault
	v.PushBack(r.Handle())
	return r, m, nil
}

func (t *Tech) ViaMaster(c *cell.Cell, name string) (handle.Ref[ViaMaster], *ViaMaster, error) {
	return cell.FindByName[ViaMaster](c, name)
}

func (t *Tech) ViaMasterCount(c *cell.Cell) int {
	if t.vias.IsNil() {
		return 0
	}
	v, err := cell.OpenVector(c, t.vias)
	if err != nil {
		return 0
	}
	return v.TotalSize()
}

// DeleteViaMaster frees a via and its shapes. Via rules that list the via
// keep a stale handle, which reads as absent.
func (t *Tech) DeleteViaMaster(c *cell.Cell, r handle.Ref[ViaMaster]) error {
	m, err := cell.Addr(c, r)
	if err != nil {
		return err
	}
	if t.vias.IsNil() {
		return fmt.Errorf("%w: via %v", cell.ErrNotFound, r)
	}
	v, err := cell.OpenVector(c, t.vias)
	if err != nil {
		return err
	}
	if !v.Remove(r.Handle()) {
		return fmt.Errorf("%w: via %v", cell.ErrNotFound, r)
	}
	if err := freeList(c, &m.shapes); err != nil {
		return err
	}
	c.Unname(r.Handle(), m.Name)
	return cell.Destroy(c, r)
}

func (m *ViaMaster) AddShape(c *cell.Cell, layer handle.Ref[Layer], rect Rect) error {
	if _, err := cell.Addr(c, layer); err != nil {
		return err
	}
	return appendChild(c, &m.shapes, ViaShape{Layer: layer, Rect: rect})
}

func (m *ViaMaster) Shapes(c *cell.Cell) ([]ViaShape, error) {
	return children(c, m.shapes)
}

// ViaRuleLayer is the per layer part of a via rule. For metal layers the
// enclosure and width range apply. For the cut layer Rect and CutSpacing
// describe the cut array.
type ViaRuleLayer struct {
	Layer      handle.Ref[Layer]
	Direction  Direction
	Enclosure  [2]int32
	MinWidth   int32
	MaxWidth   int32
	Rect       Rect
	CutSpacing [2]int32
}

type ViaRule struct {
	Name     symtab.Index
	Generate bool
	Default  bool

	layers listRef[ViaRuleLayer]
	vias   listRef[handle.Ref[ViaMaster]]
}

func (t *Tech) AddViaRule(c *cell.Cell, name string, generate bool) (handle.Ref[ViaRule], *ViaRule, error) {
	if name == "" {
		return handle.Ref[ViaRule]{}, nil, fmt.Errorf("%w: via rule", ErrEmptyName)
	}
	if _, _, err := cell.FindByName[ViaRule](c, name); err == nil {
		return handle.Ref[ViaRule]{}, nil, fmt.Errorf("%w: via rule %q", ErrDuplicateName, name)
	}
	rules, err := openList(c, &t.viaRules)
	if err != nil {
		return handle.Ref[ViaRule]{}, nil, err
	}
	r, vr := cell.Create[ViaRule](c)
	vr.Name = c.NameRecord(r.Handle(), name)
	vr.Generate = generate
	rules.PushBack(r)
	return r, vr, nil
}

func (t *Tech) ViaRule(c *cell.Cell, name string) (handle.Ref[ViaRule], *ViaRule, error) {
	return cell.FindByName[ViaRule](c, name)
}

func (r *ViaRule) AddLayer(c *cell.Cell, l ViaRuleLayer) error {
	if _, err := cell.Addr(c, l.Layer); err != nil {
		return err
	}
	return appendChild(c, &r.layers, l)
}

func (r *ViaRule) Layers(c *cell.Cell) ([]ViaRuleLayer, error) {
	return children(c, r.layers)
}

func (r *ViaRule) AddVia(c *cell.Cell, via handle.Ref[ViaMaster]) error {
	if _, err := cell.Addr(c, via); err != nil {
		return err
	}
	return appendChild(c, &r.vias, via)
}

// Vias returns the live vias the rule lists.
func (r *ViaRule) Vias(c *cell.Cell) ([]handle.Ref[ViaMaster], error) {
	all, err := children(c, r.vias)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, v := range all {
		if arena.Is[ViaMaster](c.Arena(), v.Handle()) {
			live = append(live, v)
		}
	}
	return live, nil
}

func deleteViaRule(c *cell.Cell, ref handle.Ref[ViaRule]) error {
	r, err := cell.Addr(c, ref)
	if err != nil {
		return err
	}
	if err := freeList(c, &r.layers); err != nil {
		return err
	}
	if err := freeList(c, &r.vias); err != nil {
		return err
	}
	c.Unname(ref.Handle(), r.Name)
	return cell.Destroy(c, ref)
}
