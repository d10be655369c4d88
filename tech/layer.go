package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
)

type LayerType uint8

const (
	LayerRouting LayerType = iota + 1
	LayerCut
	LayerImplant
	LayerMasterslice
	LayerOverlap
)

func (t LayerType) String() string {
	switch t {
	case LayerRouting:
		return "ROUTING"
	case LayerCut:
		return "CUT"
	case LayerImplant:
		return "IMPLANT"
	case LayerMasterslice:
		return "MASTERSLICE"
	case LayerOverlap:
		return "OVERLAP"
	}
	return fmt.Sprintf("LayerType(%d)", uint8(t))
}

type Direction uint8

const (
	DirectionNone Direction = iota
	Horizontal
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "HORIZONTAL"
	case Vertical:
		return "VERTICAL"
	}
	return "NONE"
}

// LayerRule is the rule record a layer carries. The concrete type follows
// the layer type: Routing, Cut or Implant. Masterslice and overlap layers
// carry no rule.
type LayerRule interface {
	ruleHandle() handle.Handle
}

type Routing struct{ Ref handle.Ref[RoutingRule] }
type Cut struct{ Ref handle.Ref[CutRule] }
type Implant struct{ Ref handle.Ref[ImplantRule] }

func (r Routing) ruleHandle() handle.Handle { return r.Ref.Handle() }
func (r Cut) ruleHandle() handle.Handle     { return r.Ref.Handle() }
func (r Implant) ruleHandle() handle.Handle { return r.Ref.Handle() }

type Layer struct {
	Name symtab.Index
	Type LayerType
	// Z is the position of the layer in the stack, from zero.
	Z    int32
	Rule LayerRule
}

// AddLayer appends a new layer to the top of the stack and creates the rule
// record its type calls for.
func (t *Tech) AddLayer(c *cell.Cell, name string, typ LayerType) (handle.Ref[Layer], *Layer, error) {
	if name == "" {
		return handle.Ref[Layer]{}, nil, fmt.Errorf("%w: layer", ErrEmptyName)
	}
	if _, _, err := cell.FindByName[Layer](c, name); err == nil {
		return handle.Ref[Layer]{}, nil, fmt.Errorf("%w: layer %q", ErrDuplicateName, name)
	}

	layers, err := openList(c, &t.layers)
	if err != nil {
		return handle.Ref[Layer]{}, nil, err
	}

	r, l := cell.Create[Layer](c)
	l.Type = typ
	l.Z = int32(layers.Size())
	l.Name = c.NameRecord(r.Handle(), name)

	switch typ {
	case LayerRouting:
		rr, rule := cell.Create[RoutingRule](c)
		rule.Layer = r
		l.Rule = Routing{Ref: rr}
	case LayerCut:
		rr, rule := cell.Create[CutRule](c)
		rule.Layer = r
		l.Rule = Cut{Ref: rr}
	case LayerImplant:
		rr, rule := cell.Create[ImplantRule](c)
		rule.Layer = r
		l.Rule = Implant{Ref: rr}
	}

	layers.PushBack(r)
	return r, l, nil
}

// Layers returns the layers in stack order.
func (t *Tech) Layers(c *cell.Cell) ([]handle.Ref[Layer], error) {
	return children(c, t.layers)
}

func (t *Tech) LayerCount(c *cell.Cell) int {
	return childCount(c, t.layers)
}

func (t *Tech) Layer(c *cell.Cell, name string) (handle.Ref[Layer], *Layer, error) {
	return cell.FindByName[Layer](c, name)
}

// LayerAt returns the layer at stack position z.
func (t *Tech) LayerAt(c *cell.Cell, z int) (handle.Ref[Layer], *Layer, error) {
	if t.layers.IsNil() {
		return handle.Ref[Layer]{}, nil, fmt.Errorf("%w: z %d", ErrLayerNotInTech, z)
	}
	a, err := cell.Addr(c, t.layers)
	if err != nil {
		return handle.Ref[Layer]{}, nil, err
	}
	r, ok := a.Get(z)
	if !ok {
		return handle.Ref[Layer]{}, nil, fmt.Errorf("%w: z %d", ErrLayerNotInTech, z)
	}
	l, err := cell.Addr(c, r)
	return r, l, err
}

// DeleteLayer removes a layer from the stack, freeing its rule and
// everything the rule owns. Layers above it move down one position.
func (t *Tech) DeleteLayer(c *cell.Cell, r handle.Ref[Layer]) error {
	l, err := cell.Addr(c, r)
	if err != nil {
		return err
	}
	if t.layers.IsNil() {
		return fmt.Errorf("%w: %v", ErrLayerNotInTech, r)
	}
	a, err := cell.Addr(c, t.layers)
	if err != nil {
		return err
	}
	i := a.IndexFunc(func(v handle.Ref[Layer]) bool { return v == r })
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrLayerNotInTech, r)
	}

	switch rule := l.Rule.(type) {
	case Routing:
		err = deleteRoutingRule(c, rule.Ref)
	case Cut:
		err = deleteCutRule(c, rule.Ref)
	case Implant:
		err = deleteImplantRule(c, rule.Ref)
	}
	if err != nil {
		return err
	}

	a.DeleteAt(i)
	for z, above := range a.Values()[i:] {
		la, err := cell.Addr(c, above)
		if err != nil {
			return err
		}
		la.Z = int32(i + z)
	}
	c.Unname(r.Handle(), l.Name)
	return cell.Destroy(c, r)
}

func (l *Layer) RoutingRule(c *cell.Cell) (*RoutingRule, error) {
	rule, ok := l.Rule.(Routing)
	if !ok {
		return nil, fmt.Errorf("%w: routing on %v layer", ErrRuleKind, l.Type)
	}
	return cell.Addr(c, rule.Ref)
}

func (l *Layer) CutRule(c *cell.Cell) (*CutRule, error) {
	rule, ok := l.Rule.(Cut)
	if !ok {
		return nil, fmt.Errorf("%w: cut on %v layer", ErrRuleKind, l.Type)
	}
	return cell.Addr(c, rule.Ref)
}

func (l *Layer) ImplantRule(c *cell.Cell) (*ImplantRule, error) {
	rule, ok := l.Rule.(Implant)
	if !ok {
		return nil, fmt.Errorf("%w: implant on %v layer", ErrRuleKind, l.Type)
	}
	return cell.Addr(c, rule.Ref)
}
