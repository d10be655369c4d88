package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/symtab"
	"github.com/forestrie/go-celldb/tech"
)

// encoder walks the schema of one cell. Names are resolved through the
// cell's symbol table.
type encoder struct {
	c *cell.Cell
}

// Encode captures the cell's schema. A cell without a technology root
// produces a snapshot with a nil Tech.
func Encode(c *cell.Cell) (Snapshot, error) {
	if c.Closed() {
		return Snapshot{}, cell.ErrClosed
	}
	id := c.ID()
	s := Snapshot{
		Version:   Version,
		CellID:    id[:],
		CellName:  c.Name(),
		Timestamp: time.Now().UnixMilli(),
	}

	t, err := tech.Get(c)
	if errors.Is(err, tech.ErrNoTech) {
		return s, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	e := encoder{c: c}
	if s.Tech, err = e.tech(t); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (e encoder) name(i symtab.Index) string {
	s, _ := e.c.SymbolByIndex(i)
	return s
}

func (e encoder) layerName(r handle.Ref[tech.Layer]) (string, error) {
	l, err := cell.Addr(e.c, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownLayer, r)
	}
	return e.name(l.Name), nil
}

func (e encoder) tech(t *tech.Tech) (*TechRecord, error) {
	units, err := t.GetUnits(e.c)
	if err != nil {
		return nil, err
	}
	tr := &TechRecord{Units: *units, ManufacturingGrid: t.ManufacturingGrid}

	sites, err := t.Sites(e.c)
	if err != nil {
		return nil, err
	}
	for _, r := range sites {
		s, err := cell.Addr(e.c, r)
		if err != nil {
			return nil, err
		}
		tr.Sites = append(tr.Sites, SiteRecord{
			Name: e.name(s.Name), Class: uint8(s.Class), Width: s.Width, Height: s.Height, Symmetry: s.Symmetry})
	}

	layers, err := t.Layers(e.c)
	if err != nil {
		return nil, err
	}
	for _, r := range layers {
		lr, err := e.layer(r)
		if err != nil {
			return nil, err
		}
		tr.Layers = append(tr.Layers, lr)
	}

	vias, err := t.ViaMasters(e.c)
	if err != nil {
		return nil, err
	}
	for _, r := range vias {
		vr, err := e.via(r)
		if err != nil {
			return nil, err
		}
		tr.Vias = append(tr.Vias, vr)
	}

	rules, err := t.ViaRules(e.c)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		vr, err := e.viaRule(r)
		if err != nil {
			return nil, err
		}
		tr.ViaRules = append(tr.ViaRules, vr)
	}

	props, err := t.Properties(e.c)
	if err != nil {
		return nil, err
	}
	for _, r := range props {
		p, err := cell.Addr(e.c, r)
		if err != nil {
			return nil, err
		}
		tr.Properties = append(tr.Properties, PropertyRecord{
			Name: e.name(p.Name), Object: uint8(p.Object), Type: uint8(p.Type)})
	}
	return tr, nil
}

func (e encoder) layer(r handle.Ref[tech.Layer]) (LayerRecord, error) {
	l, err := cell.Addr(e.c, r)
	if err != nil {
		return LayerRecord{}, err
	}
	lr := LayerRecord{Name: e.name(l.Name), Type: uint8(l.Type)}

	switch l.Rule.(type) {
	case tech.Routing:
		rule, err := l.RoutingRule(e.c)
		if err != nil {
			return LayerRecord{}, err
		}
		rr := &RoutingRecord{
			Direction: uint8(rule.Direction),
			Pitch:     rule.Pitch,
			Offset:    rule.Offset,
			Width:     rule.Width,
			MinWidth:  rule.MinWidth,
			MaxWidth:  rule.MaxWidth,
			Area:      rule.Area,
			Thickness: rule.Thickness,
		}
		if rr.Spacings, err = e.spacings(rule.Spacings(e.c)); err != nil {
			return LayerRecord{}, err
		}
		table, err := rule.SpacingTable(e.c)
		switch {
		case errors.Is(err, tech.ErrNoSpacingTable):
		case err != nil:
			return LayerRecord{}, err
		default:
			tab := &TableRecord{}
			if tab.Lengths, err = table.Lengths(e.c); err != nil {
				return LayerRecord{}, err
			}
			if tab.Rows, err = table.Rows(e.c); err != nil {
				return LayerRecord{}, err
			}
			rr.Table = tab
		}
		lr.Routing = rr

	case tech.Cut:
		rule, err := l.CutRule(e.c)
		if err != nil {
			return LayerRecord{}, err
		}
		cr := &CutRecord{Width: rule.Width}
		if cr.Spacings, err = e.spacings(rule.Spacings(e.c)); err != nil {
			return LayerRecord{}, err
		}
		if cr.Enclosures, err = rule.Enclosures(e.c); err != nil {
			return LayerRecord{}, err
		}
		lr.Cut = cr

	case tech.Implant:
		rule, err := l.ImplantRule(e.c)
		if err != nil {
			return LayerRecord{}, err
		}
		ir := &ImplantRecord{Width: rule.Width}
		if ir.Spacings, err = e.spacings(rule.Spacings(e.c)); err != nil {
			return LayerRecord{}, err
		}
		lr.Implant = ir
	}
	return lr, nil
}

func (e encoder) spacings(refs []handle.Ref[tech.Spacing], err error) ([]SpacingRecord, error) {
	if err != nil {
		return nil, err
	}
	var out []SpacingRecord
	for _, r := range refs {
		s, err := cell.Addr(e.c, r)
		if err != nil {
			return nil, err
		}
		out = append(out, spacingRecord(s))
	}
	return out, nil
}

func (e encoder) via(r handle.Ref[tech.ViaMaster]) (ViaRecord, error) {
	m, err := cell.Addr(e.c, r)
	if err != nil {
		return ViaRecord{}, err
	}
	vr := ViaRecord{Name: e.name(m.Name), Default: m.Default, Resistance: m.Resistance}
	shapes, err := m.Shapes(e.c)
	if err != nil {
		return ViaRecord{}, err
	}
	for _, s := range shapes {
		layer, err := e.layerName(s.Layer)
		if err != nil {
			return ViaRecord{}, err
		}
		vr.Shapes = append(vr.Shapes, ShapeRecord{Layer: layer, Rect: s.Rect})
	}
	return vr, nil
}

func (e encoder) viaRule(r handle.Ref[tech.ViaRule]) (ViaRuleRecord, error) {
	rule, err := cell.Addr(e.c, r)
	if err != nil {
		return ViaRuleRecord{}, err
	}
	vr := ViaRuleRecord{Name: e.name(rule.Name), Generate: rule.Generate, Default: rule.Default}
	layers, err := rule.Layers(e.c)
	if err != nil {
		return ViaRuleRecord{}, err
	}
	for _, l := range layers {
		name, err := e.layerName(l.Layer)
		if err != nil {
			return ViaRuleRecord{}, err
		}
		vr.Layers = append(vr.Layers, ViaRuleLayerRecord{
			Layer:      name,
			Direction:  uint8(l.Direction),
			Enclosure:  l.Enclosure,
			MinWidth:   l.MinWidth,
			MaxWidth:   l.MaxWidth,
			Rect:       l.Rect,
			CutSpacing: l.CutSpacing,
		})
	}
	vias, err := rule.Vias(e.c)
	if err != nil {
		return ViaRuleRecord{}, err
	}
	for _, v := range vias {
		m, err := cell.Addr(e.c, v)
		if err != nil {
			return ViaRuleRecord{}, err
		}
		vr.Vias = append(vr.Vias, e.name(m.Name))
	}
	return vr, nil
}
