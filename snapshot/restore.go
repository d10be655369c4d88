package snapshot

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/tech"
	"github.com/google/uuid"
)

// Restore builds a new cell holding the schema captured in s. The cell
// keeps the snapshot's id unless opts supply another. Handles in the
// restored cell are unrelated to those of the cell that was encoded.
func Restore(s Snapshot, opts ...cell.Option) (*cell.Cell, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	if len(s.CellID) != 0 {
		id, err := uuid.FromBytes(s.CellID)
		if err != nil {
			return nil, err
		}
		opts = append([]cell.Option{cell.WithID(id)}, opts...)
	}
	c, err := cell.New(s.CellName, opts...)
	if err != nil {
		return nil, err
	}
	if s.Tech == nil {
		return c, nil
	}
	if err := restoreTech(c, s.Tech); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func restoreTech(c *cell.Cell, tr *TechRecord) error {
	_, t, err := tech.New(c)
	if err != nil {
		return err
	}
	t.ManufacturingGrid = tr.ManufacturingGrid
	units, err := t.GetUnits(c)
	if err != nil {
		return err
	}
	*units = tr.Units

	for _, sr := range tr.Sites {
		_, site, err := t.AddSite(c, sr.Name, tech.SiteClass(sr.Class), sr.Width, sr.Height)
		if err != nil {
			return err
		}
		site.Symmetry = sr.Symmetry
	}

	layers := make(map[string]handle.Ref[tech.Layer], len(tr.Layers))
	for _, lr := range tr.Layers {
		r, err := restoreLayer(c, t, lr)
		if err != nil {
			return err
		}
		layers[lr.Name] = r
	}
	layerRef := func(name string) (handle.Ref[tech.Layer], error) {
		r, ok := layers[name]
		if !ok {
			return handle.Ref[tech.Layer]{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
		return r, nil
	}

	for _, vr := range tr.Vias {
		_, m, err := t.AddViaMaster(c, vr.Name, vr.Default)
		if err != nil {
			return err
		}
		m.Resistance = vr.Resistance
		for _, s := range vr.Shapes {
			l, err := layerRef(s.Layer)
			if err != nil {
				return err
			}
			if err := m.AddShape(c, l, s.Rect); err != nil {
				return err
			}
		}
	}

	for _, rr := range tr.ViaRules {
		_, rule, err := t.AddViaRule(c, rr.Name, rr.Generate)
		if err != nil {
			return err
		}
		rule.Default = rr.Default
		for _, lr := range rr.Layers {
			l, err := layerRef(lr.Layer)
			if err != nil {
				return err
			}
			if err := rule.AddLayer(c, tech.ViaRuleLayer{
				Layer:      l,
				Direction:  tech.Direction(lr.Direction),
				Enclosure:  lr.Enclosure,
				MinWidth:   lr.MinWidth,
				MaxWidth:   lr.MaxWidth,
				Rect:       lr.Rect,
				CutSpacing: lr.CutSpacing,
			}); err != nil {
				return err
			}
		}
		for _, name := range rr.Vias {
			v, _, err := t.ViaMaster(c, name)
			if err != nil {
				return fmt.Errorf("via rule %q: %w", rr.Name, err)
			}
			if err := rule.AddVia(c, v); err != nil {
				return err
			}
		}
	}

	for _, pr := range tr.Properties {
		if _, _, err := t.AddProperty(
			c, pr.Name, tech.PropertyObject(pr.Object), tech.PropertyType(pr.Type)); err != nil {
			return err
		}
	}
	return nil
}

func restoreLayer(c *cell.Cell, t *tech.Tech, lr LayerRecord) (handle.Ref[tech.Layer], error) {
	r, l, err := t.AddLayer(c, lr.Name, tech.LayerType(lr.Type))
	if err != nil {
		return handle.Ref[tech.Layer]{}, err
	}

	switch {
	case lr.Routing != nil:
		rule, err := l.RoutingRule(c)
		if err != nil {
			return r, err
		}
		rr := lr.Routing
		rule.Direction = tech.Direction(rr.Direction)
		rule.Pitch, rule.Offset, rule.Width = rr.Pitch, rr.Offset, rr.Width
		rule.MinWidth, rule.MaxWidth = rr.MinWidth, rr.MaxWidth
		rule.Area, rule.Thickness = rr.Area, rr.Thickness
		if err := addSpacings(c, rr.Spacings, rule.AddSpacing); err != nil {
			return r, err
		}
		if rr.Table != nil {
			if _, err := rule.SetSpacingTable(c, rr.Table.Lengths, rr.Table.Rows); err != nil {
				return r, err
			}
		}

	case lr.Cut != nil:
		rule, err := l.CutRule(c)
		if err != nil {
			return r, err
		}
		rule.Width = lr.Cut.Width
		if err := addSpacings(c, lr.Cut.Spacings, rule.AddSpacing); err != nil {
			return r, err
		}
		for _, e := range lr.Cut.Enclosures {
			if err := rule.AddEnclosure(c, e); err != nil {
				return r, err
			}
		}

	case lr.Implant != nil:
		rule, err := l.ImplantRule(c)
		if err != nil {
			return r, err
		}
		rule.Width = lr.Implant.Width
		if err := addSpacings(c, lr.Implant.Spacings, rule.AddSpacing); err != nil {
			return r, err
		}
	}
	return r, nil
}

type addSpacingFunc func(*cell.Cell, int32, tech.SpacingKind) (handle.Ref[tech.Spacing], *tech.Spacing, error)

func addSpacings(c *cell.Cell, records []SpacingRecord, add addSpacingFunc) error {
	for _, sr := range records {
		kind, ok := sr.kind()
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSpacing, sr.Kind)
		}
		if _, _, err := add(c, sr.Min, kind); err != nil {
			return err
		}
	}
	return nil
}
