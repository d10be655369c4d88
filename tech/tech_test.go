package tech

import (
	"testing"

	"github.com/forestrie/go-celldb/arena"
	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/celltesting"
	"github.com/forestrie/go-celldb/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCell(t *testing.T) *cell.Cell {
	tc := celltesting.NewTestContext(t, celltesting.TestConfig{TestLabelPrefix: "tech"})
	return tc.Cell
}

func layerNames(t *testing.T, c *cell.Cell, tech *Tech) []string {
	refs, err := tech.Layers(c)
	require.NoError(t, err)
	var names []string
	for z, r := range refs {
		l, err := cell.Addr(c, r)
		require.NoError(t, err)
		assert.Equal(t, int32(z), l.Z)
		name, ok := c.SymbolByIndex(l.Name)
		require.True(t, ok)
		names = append(names, name)
	}
	return names
}

func TestNewAndGet(t *testing.T) {
	c := newTestCell(t)

	_, err := Get(c)
	assert.ErrorIs(t, err, ErrNoTech)

	r, tech, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, r.Handle(), c.Root())

	got, err := Get(c)
	require.NoError(t, err)
	assert.Same(t, tech, got)

	_, _, err = New(c)
	assert.ErrorIs(t, err, ErrRootExists)

	// child lists are not allocated until used
	assert.True(t, tech.layers.IsNil())
	refs, err := tech.Layers(c)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, 0, tech.LayerCount(c))
}

func TestAddLayer(t *testing.T) {
	c := newTestCell(t)
	_, tech, err := New(c)
	require.NoError(t, err)

	tests := []struct {
		name    string
		typ     LayerType
		wantErr error
	}{
		{"poly", LayerMasterslice, nil},
		{"metal1", LayerRouting, nil},
		{"via1", LayerCut, nil},
		{"nwell", LayerImplant, nil},
		{"metal1", LayerRouting, ErrDuplicateName},
		{"", LayerRouting, ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.typ.String(), func(t *testing.T) {
			r, l, err := tech.AddLayer(c, tt.name, tt.typ)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, l.Type)

			got, _, err := tech.Layer(c, tt.name)
			require.NoError(t, err)
			assert.Equal(t, r, got)

			_, rerr := l.RoutingRule(c)
			_, cerr := l.CutRule(c)
			_, ierr := l.ImplantRule(c)
			assert.Equal(t, tt.typ == LayerRouting, rerr == nil)
			assert.Equal(t, tt.typ == LayerCut, cerr == nil)
			assert.Equal(t, tt.typ == LayerImplant, ierr == nil)
			if tt.typ == LayerMasterslice {
				assert.Nil(t, l.Rule)
				assert.ErrorIs(t, rerr, ErrRuleKind)
			}
		})
	}
	assert.Equal(t, []string{"poly", "metal1", "via1", "nwell"}, layerNames(t, c, tech))

	_, l, err := tech.LayerAt(c, 2)
	require.NoError(t, err)
	assert.Equal(t, LayerCut, l.Type)
	_, _, err = tech.LayerAt(c, 4)
	assert.ErrorIs(t, err, ErrLayerNotInTech)
}

func TestSpacingKinds(t *testing.T) {
	c := newTestCell(t)
	_, tech, err := New(c)
	require.NoError(t, err)

	_, m1, err := tech.AddLayer(c, "metal1", LayerRouting)
	require.NoError(t, err)
	_, v1, err := tech.AddLayer(c, "via1", LayerCut)
	require.NoError(t, err)
	_, nw, err := tech.AddLayer(c, "nwell", LayerImplant)
	require.NoError(t, err)

	rr, err := m1.RoutingRule(c)
	require.NoError(t, err)
	cr, err := v1.CutRule(c)
	require.NoError(t, err)
	ir, err := nw.ImplantRule(c)
	require.NoError(t, err)

	type adder interface {
		AddSpacing(*cell.Cell, int32, SpacingKind) (handle.Ref[Spacing], *Spacing, error)
	}
	tests := []struct {
		name    string
		rule    adder
		kind    SpacingKind
		wantErr bool
	}{
		{"routing default", rr, nil, false},
		{"routing range", rr, RangeSpacing{Min: 100, Max: 200}, false},
		{"routing eol", rr, EndOfLineSpacing{Width: 90, Within: 25}, false},
		{"routing notch", rr, NotchLengthSpacing{Length: 60}, false},
		{"routing samenet", rr, SameNetSpacing{PGOnly: true}, false},
		{"routing adjacent cuts", rr, AdjacentCutsSpacing{Cuts: 3}, true},
		{"cut adjacent cuts", cr, AdjacentCutsSpacing{Cuts: 3, Within: 200}, false},
		{"cut samenet", cr, SameNetSpacing{}, false},
		{"cut eol", cr, EndOfLineSpacing{}, true},
		{"implant default", ir, DefaultSpacing{}, false},
		{"implant range", ir, RangeSpacing{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sp, err := tt.rule.AddSpacing(c, 140, tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSpacingKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int32(140), sp.Min)
			assert.Equal(t, KindName(tt.kind), KindName(sp.Kind))
			got, err := cell.Addr(c, r)
			require.NoError(t, err)
			assert.Same(t, sp, got)
		})
	}

	spacings, err := rr.Spacings(c)
	require.NoError(t, err)
	require.Len(t, spacings, 5)
	first, err := cell.Addr(c, spacings[0])
	require.NoError(t, err)
	assert.Equal(t, DefaultSpacing{}, first.Kind)

	eol, err := cell.Addr(c, spacings[2])
	require.NoError(t, err)
	switch k := eol.Kind.(type) {
	case EndOfLineSpacing:
		assert.Equal(t, int32(90), k.Width)
	default:
		t.Fatalf("unexpected kind %T", k)
	}

	require.NoError(t, rr.RemoveSpacing(c, spacings[1]))
	after, err := rr.Spacings(c)
	require.NoError(t, err)
	assert.Equal(t, []handle.Ref[Spacing]{spacings[0], spacings[2], spacings[3], spacings[4]}, after)
	assert.ErrorIs(t, rr.RemoveSpacing(c, spacings[1]), cell.ErrNotFound)
}

func TestSpacingTable(t *testing.T) {
	c := newTestCell(t)
	_, tech, err := New(c)
	require.NoError(t, err)
	_, m1, err := tech.AddLayer(c, "metal1", LayerRouting)
	require.NoError(t, err)
	rr, err := m1.RoutingRule(c)
	require.NoError(t, err)

	_, err = rr.SpacingTable(c)
	assert.ErrorIs(t, err, ErrNoSpacingTable)

	_, err = rr.SetSpacingTable(c, []int32{0, 500}, []SpacingTableRow{{Width: 0, Spacings: []int32{1}}})
	assert.ErrorIs(t, err, ErrTableShape)

	lengths := []int32{0, 500, 1500}
	rows := []SpacingTableRow{
		{Width: 0, Spacings: []int32{140, 140, 140}},
		{Width: 300, Spacings: []int32{140, 200, 240}},
		{Width: 1000, Spacings: []int32{140, 300, 500}},
	}
	_, err = rr.SetSpacingTable(c, lengths, rows)
	require.NoError(t, err)

	st, err := rr.SpacingTable(c)
	require.NoError(t, err)
	gotLengths, err := st.Lengths(c)
	require.NoError(t, err)
	assert.Equal(t, lengths, gotLengths)
	gotRows, err := st.Rows(c)
	require.NoError(t, err)
	assert.Equal(t, rows, gotRows)

	lookups := []struct {
		width, prl, want int32
	}{
		{100, 100, 140},
		{100, 2000, 140},
		{400, 100, 140},
		{400, 600, 200},
		{400, 1600, 240},
		{1200, 600, 300},
		{1200, 1600, 500},
		{0, 0, 140},
	}
	for _, l := range lookups {
		got, err := st.Lookup(c, l.width, l.prl)
		require.NoError(t, err)
		assert.Equal(t, l.want, got, "width %d prl %d", l.width, l.prl)
	}

	// replacing the table frees the old one
	before := c.Stats().Live()
	_, err = rr.SetSpacingTable(c, []int32{0}, []SpacingTableRow{{Width: 0, Spacings: []int32{99}}})
	require.NoError(t, err)
	assert.Equal(t, before, c.Stats().Live())
	st, err = rr.SpacingTable(c)
	require.NoError(t, err)
	got, err := st.Lookup(c, 5000, 5000)
	require.NoError(t, err)
	assert.Equal(t, int32(99), got)
}

func TestDeleteLayer(t *testing.T) {
	c := newTestCell(t)
	tech := TestNewSampleTech(t, c)
	require.Equal(t, []string{"poly", "metal1", "via1", "metal2"}, layerNames(t, c, tech))

	m1, l, err := tech.Layer(c, "metal1")
	require.NoError(t, err)
	rule := l.Rule.(Routing).Ref
	rr, err := cell.Addr(c, rule)
	require.NoError(t, err)
	spacings, err := rr.Spacings(c)
	require.NoError(t, err)
	table := rr.table

	require.NoError(t, tech.DeleteLayer(c, m1))
	assert.Equal(t, []string{"poly", "via1", "metal2"}, layerNames(t, c, tech))

	_, _, err = tech.Layer(c, "metal1")
	assert.ErrorIs(t, err, cell.ErrNotFound)
	_, err = cell.Addr(c, rule)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)
	_, err = cell.Addr(c, table)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)
	for _, s := range spacings {
		assert.False(t, c.Arena().Live(s.Handle()))
	}

	assert.ErrorIs(t, tech.DeleteLayer(c, m1), arena.ErrStaleHandle)
}

func TestViaMasters(t *testing.T) {
	c := newTestCell(t)
	tech := TestNewSampleTech(t, c)

	vr, via, err := tech.ViaMaster(c, "via1_default")
	require.NoError(t, err)
	assert.True(t, via.Default)
	shapes, err := via.Shapes(c)
	require.NoError(t, err)
	require.Len(t, shapes, 3)
	l, err := cell.Addr(c, shapes[1].Layer)
	require.NoError(t, err)
	assert.Equal(t, LayerCut, l.Type)

	_, _, err = tech.AddViaMaster(c, "via1_default", false)
	assert.ErrorIs(t, err, ErrDuplicateName)

	for i := range 100 {
		_, _, err := tech.AddViaMaster(c, "gen_"+string(rune('a'+i%26))+string(rune('a'+i/26)), false)
		require.NoError(t, err)
	}
	assert.Equal(t, 101, tech.ViaMasterCount(c))
	vias, err := tech.ViaMasters(c)
	require.NoError(t, err)
	assert.Equal(t, vr, vias[0])

	_, rule, err := tech.ViaRule(c, "via1_gen")
	require.NoError(t, err)
	listed, err := rule.Vias(c)
	require.NoError(t, err)
	assert.Equal(t, []handle.Ref[ViaMaster]{vr}, listed)

	require.NoError(t, tech.DeleteViaMaster(c, vr))
	assert.Equal(t, 100, tech.ViaMasterCount(c))
	listed, err = rule.Vias(c)
	require.NoError(t, err)
	assert.Empty(t, listed)
	_, _, err = tech.ViaMaster(c, "via1_default")
	assert.ErrorIs(t, err, cell.ErrNotFound)
}

func TestViaRuleLayers(t *testing.T) {
	c := newTestCell(t)
	tech := TestNewSampleTech(t, c)
	_, rule, err := tech.ViaRule(c, "via1_gen")
	require.NoError(t, err)
	assert.True(t, rule.Generate)
	layers, err := rule.Layers(c)
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, [2]int32{420, 420}, layers[1].CutSpacing)

	assert.Error(t, rule.AddLayer(c, ViaRuleLayer{}))
}

func TestSitesAndProperties(t *testing.T) {
	c := newTestCell(t)
	tech := TestNewSampleTech(t, c)

	_, site, err := tech.Site(c, "core")
	require.NoError(t, err)
	assert.Equal(t, int32(2720), site.Height)
	assert.True(t, site.Symmetry.Y)

	_, _, err = tech.AddSite(c, "core", SitePad, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateName)

	// the same property name may be defined for another object kind
	_, _, err = tech.AddProperty(c, "LEF58_TYPE", PropLayer, PropString)
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, _, err = tech.AddProperty(c, "LEF58_TYPE", PropVia, PropString)
	require.NoError(t, err)
	props, err := tech.Properties(c)
	require.NoError(t, err)
	assert.Len(t, props, 2)
}

func TestAddWithStaleList(t *testing.T) {
	tests := []struct {
		name string
		add  func(c *cell.Cell, tech *Tech, name string) error
		drop func(c *cell.Cell, tech *Tech) error
	}{
		{
			"layer",
			func(c *cell.Cell, tech *Tech, name string) error {
				_, _, err := tech.AddLayer(c, name, LayerRouting)
				return err
			},
			func(c *cell.Cell, tech *Tech) error { return cell.Destroy(c, tech.layers) },
		},
		{
			"site",
			func(c *cell.Cell, tech *Tech, name string) error {
				_, _, err := tech.AddSite(c, name, SiteCore, 10, 20)
				return err
			},
			func(c *cell.Cell, tech *Tech) error { return cell.Destroy(c, tech.sites) },
		},
		{
			"via rule",
			func(c *cell.Cell, tech *Tech, name string) error {
				_, _, err := tech.AddViaRule(c, name, true)
				return err
			},
			func(c *cell.Cell, tech *Tech) error { return cell.Destroy(c, tech.viaRules) },
		},
		{
			"property",
			func(c *cell.Cell, tech *Tech, name string) error {
				_, _, err := tech.AddProperty(c, name, PropLayer, PropString)
				return err
			},
			func(c *cell.Cell, tech *Tech) error { return cell.Destroy(c, tech.props) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCell(t)
			_, tech, err := New(c)
			require.NoError(t, err)
			require.NoError(t, tt.add(c, tech, "first"))
			require.NoError(t, tt.drop(c, tech))

			live := c.Stats().Live()
			err = tt.add(c, tech, "second")
			assert.ErrorIs(t, err, arena.ErrStaleHandle)

			// nothing allocated or named by the failed add
			assert.Equal(t, live, c.Stats().Live())
			assert.Empty(t, c.Symbols().References(c.Symbols().Lookup("second")))
		})
	}
}

func TestDeleteTech(t *testing.T) {
	c := newTestCell(t)
	TestNewSampleTech(t, c)
	require.Greater(t, c.Stats().Live(), 20)

	require.NoError(t, Delete(c))
	assert.True(t, c.Root().IsNil())
	// only the cell's own record remains
	assert.Equal(t, 1, c.Stats().Live())

	_, err := Get(c)
	assert.ErrorIs(t, err, ErrNoTech)
}
