package tech

import (
	"testing"

	"github.com/forestrie/go-celldb/cell"
	"github.com/stretchr/testify/require"
)

// TestNewSampleTech populates c with a small two metal technology: units, a
// core site, poly, metal1, via1 and metal2 layers with spacing rules and a
// parallel run length table, a fixed via, a generate via rule and a
// property definition.
func TestNewSampleTech(t *testing.T, c *cell.Cell) *Tech {
	_, tech, err := New(c)
	require.NoError(t, err)
	tech.ManufacturingGrid = 5

	units, err := tech.GetUnits(c)
	require.NoError(t, err)
	units.DatabaseMicrons = 2000

	_, site, err := tech.AddSite(c, "core", SiteCore, 380, 2720)
	require.NoError(t, err)
	site.Symmetry.Y = true

	_, _, err = tech.AddLayer(c, "poly", LayerMasterslice)
	require.NoError(t, err)

	m1, metal1, err := tech.AddLayer(c, "metal1", LayerRouting)
	require.NoError(t, err)
	rr, err := metal1.RoutingRule(c)
	require.NoError(t, err)
	rr.Direction = Horizontal
	rr.Pitch, rr.Width, rr.Area = 380, 170, 83000
	_, _, err = rr.AddSpacing(c, 170, nil)
	require.NoError(t, err)
	_, _, err = rr.AddSpacing(c, 230, EndOfLineSpacing{Width: 230, Within: 80})
	require.NoError(t, err)
	_, err = rr.SetSpacingTable(c, []int32{0, 1000},
		[]SpacingTableRow{
			{Width: 0, Spacings: []int32{170, 170}},
			{Width: 500, Spacings: []int32{170, 300}},
		})
	require.NoError(t, err)

	v1, via1, err := tech.AddLayer(c, "via1", LayerCut)
	require.NoError(t, err)
	cr, err := via1.CutRule(c)
	require.NoError(t, err)
	cr.Width = 200
	_, _, err = cr.AddSpacing(c, 220, AdjacentCutsSpacing{Cuts: 3, Within: 310})
	require.NoError(t, err)
	require.NoError(t, cr.AddEnclosure(c, Enclosure{Above: false, Overhang1: 0, Overhang2: 60}))
	require.NoError(t, cr.AddEnclosure(c, Enclosure{Above: true, Overhang1: 30, Overhang2: 60}))

	m2, metal2, err := tech.AddLayer(c, "metal2", LayerRouting)
	require.NoError(t, err)
	rr2, err := metal2.RoutingRule(c)
	require.NoError(t, err)
	rr2.Direction = Vertical
	rr2.Pitch, rr2.Width = 400, 200
	_, _, err = rr2.AddSpacing(c, 200, RangeSpacing{Min: 0, Max: 1000})
	require.NoError(t, err)

	vr, via, err := tech.AddViaMaster(c, "via1_default", true)
	require.NoError(t, err)
	via.Resistance = 4
	require.NoError(t, via.AddShape(c, m1, Rect{-130, -100, 130, 100}))
	require.NoError(t, via.AddShape(c, v1, Rect{-100, -100, 100, 100}))
	require.NoError(t, via.AddShape(c, m2, Rect{-100, -130, 100, 130}))

	_, rule, err := tech.AddViaRule(c, "via1_gen", true)
	require.NoError(t, err)
	require.NoError(t, rule.AddLayer(c, ViaRuleLayer{Layer: m1, Enclosure: [2]int32{0, 60}}))
	require.NoError(t, rule.AddLayer(c, ViaRuleLayer{
		Layer: v1, Rect: Rect{-100, -100, 100, 100}, CutSpacing: [2]int32{420, 420}}))
	require.NoError(t, rule.AddLayer(c, ViaRuleLayer{Layer: m2, Enclosure: [2]int32{30, 60}}))
	require.NoError(t, rule.AddVia(c, vr))

	_, _, err = tech.AddProperty(c, "LEF58_TYPE", PropLayer, PropString)
	require.NoError(t, err)

	return tech
}
