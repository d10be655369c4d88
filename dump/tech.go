package dump

import (
	"io"
	"strconv"
	"strings"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
	"github.com/forestrie/go-celldb/tech"
)

// Tech writes the technology schema of c in a LEF like form.
func Tech(w io.Writer, c *cell.Cell) error {
	t, err := tech.Get(c)
	if err != nil {
		return err
	}
	p := newPrinter(w, c)
	p.line("TECH %s %s", c.Name(), c.ID())
	p.depth++

	if u, err := t.GetUnits(c); err == nil {
		p.line("UNITS DATABASE MICRONS %d ;", u.DatabaseMicrons)
	} else {
		p.fail(err)
	}
	if t.ManufacturingGrid != 0 {
		p.line("MANUFACTURINGGRID %d ;", t.ManufacturingGrid)
	}

	p.sites(t)
	p.layers(t)
	p.vias(t)
	p.viaRules(t)
	p.properties(t)

	p.depth--
	p.line("END TECH")
	return p.err
}

func (p *printer) sites(t *tech.Tech) {
	refs, err := t.Sites(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, r := range refs {
		s, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		var sym []string
		if s.Symmetry.X {
			sym = append(sym, "X")
		}
		if s.Symmetry.Y {
			sym = append(sym, "Y")
		}
		if s.Symmetry.R90 {
			sym = append(sym, "R90")
		}
		line := "SITE %s CLASS %v SIZE %d BY %d"
		args := []any{p.name(s.Name), s.Class, s.Width, s.Height}
		if len(sym) > 0 {
			line += " SYMMETRY %s"
			args = append(args, strings.Join(sym, " "))
		}
		p.line(line+" ;", args...)
	}
}

func (p *printer) layers(t *tech.Tech) {
	refs, err := t.Layers(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, r := range refs {
		l, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		name := p.name(l.Name)
		if l.Rule == nil {
			p.line("LAYER %s TYPE %v Z %d ;", name, l.Type, l.Z)
			continue
		}
		p.line("LAYER %s TYPE %v Z %d", name, l.Type, l.Z)
		p.depth++
		switch rule := l.Rule.(type) {
		case tech.Routing:
			p.routingRule(rule.Ref)
		case tech.Cut:
			p.cutRule(rule.Ref)
		case tech.Implant:
			p.implantRule(rule.Ref)
		}
		p.depth--
		p.line("END %s", name)
	}
}

func (p *printer) routingRule(ref handle.Ref[tech.RoutingRule]) {
	rr, err := cell.Addr(p.c, ref)
	if err != nil {
		p.fail(err)
		return
	}
	p.line("DIRECTION %v PITCH %d WIDTH %d AREA %d ;", rr.Direction, rr.Pitch, rr.Width, rr.Area)
	p.spacings(rr.Spacings)
	st, err := rr.SpacingTable(p.c)
	if err != nil {
		return
	}
	lengths, err := st.Lengths(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	rows, err := st.Rows(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	p.line("SPACINGTABLE PARALLELRUNLENGTH%s", ints(lengths))
	p.depth++
	for _, row := range rows {
		p.line("WIDTH %d%s", row.Width, ints(row.Spacings))
	}
	p.depth--
	p.line(";")
}

func (p *printer) cutRule(ref handle.Ref[tech.CutRule]) {
	cr, err := cell.Addr(p.c, ref)
	if err != nil {
		p.fail(err)
		return
	}
	p.line("WIDTH %d ;", cr.Width)
	p.spacings(cr.Spacings)
	encs, err := cr.Enclosures(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, e := range encs {
		side := "BELOW"
		if e.Above {
			side = "ABOVE"
		}
		p.line("ENCLOSURE %s %d %d ;", side, e.Overhang1, e.Overhang2)
	}
}

func (p *printer) implantRule(ref handle.Ref[tech.ImplantRule]) {
	ir, err := cell.Addr(p.c, ref)
	if err != nil {
		p.fail(err)
		return
	}
	p.line("WIDTH %d ;", ir.Width)
	p.spacings(ir.Spacings)
}

func (p *printer) spacings(list func(*cell.Cell) ([]handle.Ref[tech.Spacing], error)) {
	refs, err := list(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, r := range refs {
		s, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		switch k := s.Kind.(type) {
		case tech.RangeSpacing:
			p.line("SPACING %d RANGE %d %d ;", s.Min, k.Min, k.Max)
		case tech.EndOfLineSpacing:
			p.line("SPACING %d ENDOFLINE %d WITHIN %d ;", s.Min, k.Width, k.Within)
		case tech.SameNetSpacing:
			if k.PGOnly {
				p.line("SPACING %d SAMENET PGONLY ;", s.Min)
			} else {
				p.line("SPACING %d SAMENET ;", s.Min)
			}
		case tech.NotchLengthSpacing:
			p.line("SPACING %d NOTCHLENGTH %d ;", s.Min, k.Length)
		case tech.AdjacentCutsSpacing:
			p.line("SPACING %d ADJACENTCUTS %d WITHIN %d ;", s.Min, k.Cuts, k.Within)
		default:
			p.line("SPACING %d ;", s.Min)
		}
	}
}

func (p *printer) vias(t *tech.Tech) {
	refs, err := t.ViaMasters(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, r := range refs {
		v, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		name := p.name(v.Name)
		header := "VIA " + name
		if v.Default {
			header += " DEFAULT"
		}
		p.line("%s RESISTANCE %d", header, v.Resistance)
		shapes, err := v.Shapes(p.c)
		if err != nil {
			p.fail(err)
			return
		}
		p.depth++
		for _, s := range shapes {
			p.line("LAYER %s RECT %d %d %d %d ;", p.layerName(s.Layer), s.Rect.XL, s.Rect.YL, s.Rect.XH, s.Rect.YH)
		}
		p.depth--
		p.line("END %s", name)
	}
}

func (p *printer) viaRules(t *tech.Tech) {
	refs, err := t.ViaRules(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	for _, r := range refs {
		vr, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		name := p.name(vr.Name)
		if vr.Generate {
			p.line("VIARULE %s GENERATE", name)
		} else {
			p.line("VIARULE %s", name)
		}
		p.depth++
		layers, err := vr.Layers(p.c)
		if err != nil {
			p.fail(err)
			return
		}
		for _, l := range layers {
			if l.CutSpacing != [2]int32{} {
				p.line("LAYER %s RECT %d %d %d %d SPACING %d BY %d ;", p.layerName(l.Layer),
					l.Rect.XL, l.Rect.YL, l.Rect.XH, l.Rect.YH, l.CutSpacing[0], l.CutSpacing[1])
				continue
			}
			p.line("LAYER %s ENCLOSURE %d %d ;", p.layerName(l.Layer), l.Enclosure[0], l.Enclosure[1])
		}
		vias, err := vr.Vias(p.c)
		if err != nil {
			p.fail(err)
			return
		}
		for _, v := range vias {
			m, err := cell.Addr(p.c, v)
			if err != nil {
				p.fail(err)
				return
			}
			p.line("VIA %s ;", p.name(m.Name))
		}
		p.depth--
		p.line("END %s", name)
	}
}

func (p *printer) properties(t *tech.Tech) {
	refs, err := t.Properties(p.c)
	if err != nil {
		p.fail(err)
		return
	}
	if len(refs) == 0 {
		return
	}
	p.line("PROPERTYDEFINITIONS")
	p.depth++
	for _, r := range refs {
		d, err := cell.Addr(p.c, r)
		if err != nil {
			p.fail(err)
			return
		}
		p.line("%v %s %v ;", d.Object, p.name(d.Name), d.Type)
	}
	p.depth--
	p.line("END PROPERTYDEFINITIONS")
}

func (p *printer) layerName(r handle.Ref[tech.Layer]) string {
	l, err := cell.Addr(p.c, r)
	if err != nil {
		return "<dead>"
	}
	return p.name(l.Name)
}

func ints(vs []int32) string {
	var b strings.Builder
	for _, v := range vs {
		b.WriteString(" ")
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}
