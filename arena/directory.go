package arena

import "github.com/forestrie/go-celldb/handle"

const (
	dirPageShift = 12
	dirPageLen   = 1 << dirPageShift
	dirPageMask  = dirPageLen - 1
)

// entry maps an issued sequence to the slot holding its record. A zero kind
// marks the record as freed.
type entry struct {
	kind  handle.Kind
	slot  uint32
	owner handle.Handle
}

// directory is indexed by sequence-1. Like the record pages it grows a page
// at a time, so lookups are two loads.
type directory struct {
	pages [][]entry
}

func (d *directory) at(seq uint64) *entry {
	i := seq - 1
	return &d.pages[i>>dirPageShift][i&dirPageMask]
}

func (d *directory) put(seq uint64, e entry) {
	i := seq - 1
	for uint64(len(d.pages)) <= i>>dirPageShift {
		d.pages = append(d.pages, make([]entry, dirPageLen))
	}
	d.pages[i>>dirPageShift][i&dirPageMask] = e
}
