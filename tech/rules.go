package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
)

// spacings is the spacing rule list shared by every layer rule. The rule
// owns the list and the spacing records in it.
type spacings struct {
	list listRef[handle.Ref[Spacing]]
}

func (s *spacings) add(c *cell.Cell, typ LayerType, min int32, kind SpacingKind) (handle.Ref[Spacing], *Spacing, error) {
	if err := allowedSpacing(typ, kind); err != nil {
		return handle.Ref[Spacing]{}, nil, err
	}
	if kind == nil {
		kind = DefaultSpacing{}
	}
	r, sp := cell.Create[Spacing](c)
	sp.Min = min
	sp.Kind = kind
	if err := appendChild(c, &s.list, r); err != nil {
		return handle.Ref[Spacing]{}, nil, err
	}
	return r, sp, nil
}

// Spacings returns the spacing rules in the order they were added.
func (s *spacings) Spacings(c *cell.Cell) ([]handle.Ref[Spacing], error) {
	return children(c, s.list)
}

// RemoveSpacing deletes one spacing rule, keeping the order of the rest.
func (s *spacings) RemoveSpacing(c *cell.Cell, r handle.Ref[Spacing]) error {
	if !s.list.IsNil() {
		a, err := cell.Addr(c, s.list)
		if err != nil {
			return err
		}
		if a.DeleteAt(a.IndexFunc(func(v handle.Ref[Spacing]) bool { return v == r })) {
			return cell.Destroy(c, r)
		}
	}
	return fmt.Errorf("%w: spacing %v", cell.ErrNotFound, r)
}

func (s *spacings) free(c *cell.Cell) error {
	refs, err := s.Spacings(c)
	if err != nil {
		return err
	}
	for _, r := range refs {
		if err := cell.Destroy(c, r); err != nil {
			return err
		}
	}
	return freeList(c, &s.list)
}

type RoutingRule struct {
	Layer     handle.Ref[Layer]
	Direction Direction
	Pitch     int32
	Offset    int32
	Width     int32
	MinWidth  int32
	MaxWidth  int32
	Area      int32
	Thickness int32

	spacings
	table handle.Ref[SpacingTable]
}

func (r *RoutingRule) AddSpacing(c *cell.Cell, min int32, kind SpacingKind) (handle.Ref[Spacing], *Spacing, error) {
	return r.add(c, LayerRouting, min, kind)
}

// Enclosure is the overhang a cut requires from the metal above or below.
type Enclosure struct {
	Above     bool
	Overhang1 int32
	Overhang2 int32
	// MinWidth limits the rule to metal at least this wide, zero means any.
	MinWidth int32
}

type CutRule struct {
	Layer handle.Ref[Layer]
	Width int32

	spacings
	enclosures listRef[Enclosure]
}

func (r *CutRule) AddSpacing(c *cell.Cell, min int32, kind SpacingKind) (handle.Ref[Spacing], *Spacing, error) {
	return r.add(c, LayerCut, min, kind)
}

func (r *CutRule) AddEnclosure(c *cell.Cell, e Enclosure) error {
	return appendChild(c, &r.enclosures, e)
}

func (r *CutRule) Enclosures(c *cell.Cell) ([]Enclosure, error) {
	return children(c, r.enclosures)
}

type ImplantRule struct {
	Layer handle.Ref[Layer]
	Width int32

	spacings
}

func (r *ImplantRule) AddSpacing(c *cell.Cell, min int32, kind SpacingKind) (handle.Ref[Spacing], *Spacing, error) {
	return r.add(c, LayerImplant, min, kind)
}

func deleteRoutingRule(c *cell.Cell, ref handle.Ref[RoutingRule]) error {
	r, err := cell.Addr(c, ref)
	if err != nil {
		return err
	}
	if err := r.spacings.free(c); err != nil {
		return err
	}
	if err := r.DeleteSpacingTable(c); err != nil {
		return err
	}
	return cell.Destroy(c, ref)
}

func deleteCutRule(c *cell.Cell, ref handle.Ref[CutRule]) error {
	r, err := cell.Addr(c, ref)
	if err != nil {
		return err
	}
	if err := r.spacings.free(c); err != nil {
		return err
	}
	if err := freeList(c, &r.enclosures); err != nil {
		return err
	}
	return cell.Destroy(c, ref)
}

func deleteImplantRule(c *cell.Cell, ref handle.Ref[ImplantRule]) error {
	r, err := cell.Addr(c, ref)
	if err != nil {
		return err
	}
	if err := r.spacings.free(c); err != nil {
		return err
	}
	return cell.Destroy(c, ref)
}
