package tech

import (
	"fmt"

	"github.com/forestrie/go-celldb/cell"
	"github.com/forestrie/go-celldb/handle"
)

// SpacingTable is a parallel run length spacing table. The values are held
// row major in a single numeric array, one row per width.
type SpacingTable struct {
	widths  listRef[int32]
	lengths listRef[int32]
	values  listRef[int32]
}

type SpacingTableRow struct {
	Width    int32
	Spacings []int32
}

// SetSpacingTable replaces the layer's spacing table. Both lengths and the
// row widths are expected in ascending order.
func (r *RoutingRule) SetSpacingTable(c *cell.Cell, lengths []int32, rows []SpacingTableRow) (handle.Ref[SpacingTable], error) {
	for _, row := range rows {
		if len(row.Spacings) != len(lengths) {
			return handle.Ref[SpacingTable]{}, fmt.Errorf(
				"%w: width %d has %d values for %d lengths", ErrTableShape, row.Width, len(row.Spacings), len(lengths))
		}
	}
	if err := r.DeleteSpacingTable(c); err != nil {
		return handle.Ref[SpacingTable]{}, err
	}

	ref, t := cell.Create[SpacingTable](c)
	var widths, lens, values *arrayOf32
	t.widths, widths = cell.CreateArray[int32](c)
	t.lengths, lens = cell.CreateArray[int32](c)
	t.values, values = cell.CreateArray[int32](c)

	lens.Reserve(len(lengths))
	for _, l := range lengths {
		lens.PushBack(l)
	}
	widths.Reserve(len(rows))
	values.Reserve(len(rows) * len(lengths))
	for _, row := range rows {
		widths.PushBack(row.Width)
		for _, v := range row.Spacings {
			values.PushBack(v)
		}
	}
	r.table = ref
	return ref, nil
}

func (r *RoutingRule) SpacingTable(c *cell.Cell) (*SpacingTable, error) {
	if r.table.IsNil() {
		return nil, ErrNoSpacingTable
	}
	return cell.Addr(c, r.table)
}

func (r *RoutingRule) DeleteSpacingTable(c *cell.Cell) error {
	if r.table.IsNil() {
		return nil
	}
	t, err := cell.Addr(c, r.table)
	if err != nil {
		return err
	}
	for _, l := range []*listRef[int32]{&t.widths, &t.lengths, &t.values} {
		if err := freeList(c, l); err != nil {
			return err
		}
	}
	if err := cell.Destroy(c, r.table); err != nil {
		return err
	}
	r.table = handle.Ref[SpacingTable]{}
	return nil
}

func (t *SpacingTable) Lengths(c *cell.Cell) ([]int32, error) {
	return children(c, t.lengths)
}

func (t *SpacingTable) Rows(c *cell.Cell) ([]SpacingTableRow, error) {
	widths, err := children(c, t.widths)
	if err != nil {
		return nil, err
	}
	values, err := children(c, t.values)
	if err != nil {
		return nil, err
	}
	if len(widths) == 0 {
		return nil, nil
	}
	cols := len(values) / len(widths)
	rows := make([]SpacingTableRow, len(widths))
	for i, w := range widths {
		rows[i] = SpacingTableRow{Width: w, Spacings: values[i*cols : (i+1)*cols]}
	}
	return rows, nil
}

// Lookup returns the spacing required for a shape of the given width
// running parallel to a neighbour for prl. The row used is the last whose
// width is less than width, the column the last whose length is less than
// prl, falling back to the first row and column.
func (t *SpacingTable) Lookup(c *cell.Cell, width, prl int32) (int32, error) {
	widths, err := cell.Addr(c, t.widths)
	if err != nil {
		return 0, err
	}
	lengths, err := cell.Addr(c, t.lengths)
	if err != nil {
		return 0, err
	}
	values, err := cell.Addr(c, t.values)
	if err != nil {
		return 0, err
	}
	if widths.Size() == 0 || lengths.Size() == 0 {
		return 0, ErrNoSpacingTable
	}

	row := lastBelow(widths, width)
	col := lastBelow(lengths, prl)
	v, ok := values.Get(row*lengths.Size() + col)
	if !ok {
		return 0, fmt.Errorf("%w: no value at %d,%d", ErrTableShape, row, col)
	}
	return v, nil
}

func lastBelow(a *arrayOf32, limit int32) int {
	i := 0
	for j, v := range a.All() {
		if v >= limit {
			break
		}
		i = j
	}
	return i
}
