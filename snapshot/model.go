// Package snapshot exports and imports the logical contents of a cell.
//
// A Snapshot is the schema of a cell expressed with names instead of
// handles, encoded as deterministic CBOR. It never records arena pages,
// segment layout or handle values, so a snapshot restored into a cell with a
// different page or segment size produces the same schema.
//
// Snapshots are written to an ObjectStore under a path derived from the
// cell's uuid and a sequence number. A Committer can additionally seal each
// snapshot with a COSE Sign1 message over its digest.
package snapshot

import (
	"github.com/forestrie/go-celldb/tech"
)

const Version = 1

type Snapshot struct {
	Version  uint16 `cbor:"1,keyasint"`
	CellID   []byte `cbor:"2,keyasint"`
	CellName string `cbor:"3,keyasint"`
	// Timestamp is the unix time in milliseconds when the snapshot was
	// taken.
	Timestamp int64       `cbor:"4,keyasint"`
	Seq       uint32      `cbor:"5,keyasint"`
	Tech      *TechRecord `cbor:"6,keyasint,omitempty"`
}

type TechRecord struct {
	Units             tech.Units       `cbor:"1,keyasint"`
	ManufacturingGrid int32            `cbor:"2,keyasint"`
	Sites             []SiteRecord     `cbor:"3,keyasint,omitempty"`
	Layers            []LayerRecord    `cbor:"4,keyasint,omitempty"`
	Vias              []ViaRecord      `cbor:"5,keyasint,omitempty"`
	ViaRules          []ViaRuleRecord  `cbor:"6,keyasint,omitempty"`
	Properties        []PropertyRecord `cbor:"7,keyasint,omitempty"`
}

type SiteRecord struct {
	Name     string        `cbor:"1,keyasint"`
	Class    uint8         `cbor:"2,keyasint"`
	Width    int32         `cbor:"3,keyasint"`
	Height   int32         `cbor:"4,keyasint"`
	Symmetry tech.Symmetry `cbor:"5,keyasint"`
}

// LayerRecord carries at most one of Routing, Cut or Implant, according to
// Type.
type LayerRecord struct {
	Name    string         `cbor:"1,keyasint"`
	Type    uint8          `cbor:"2,keyasint"`
	Routing *RoutingRecord `cbor:"3,keyasint,omitempty"`
	Cut     *CutRecord     `cbor:"4,keyasint,omitempty"`
	Implant *ImplantRecord `cbor:"5,keyasint,omitempty"`
}

type RoutingRecord struct {
	Direction uint8           `cbor:"1,keyasint"`
	Pitch     int32           `cbor:"2,keyasint"`
	Offset    int32           `cbor:"3,keyasint"`
	Width     int32           `cbor:"4,keyasint"`
	MinWidth  int32           `cbor:"5,keyasint"`
	MaxWidth  int32           `cbor:"6,keyasint"`
	Area      int32           `cbor:"7,keyasint"`
	Thickness int32           `cbor:"8,keyasint"`
	Spacings  []SpacingRecord `cbor:"9,keyasint,omitempty"`
	Table     *TableRecord    `cbor:"10,keyasint,omitempty"`
}

type CutRecord struct {
	Width      int32            `cbor:"1,keyasint"`
	Spacings   []SpacingRecord  `cbor:"2,keyasint,omitempty"`
	Enclosures []tech.Enclosure `cbor:"3,keyasint,omitempty"`
}

type ImplantRecord struct {
	Width    int32           `cbor:"1,keyasint"`
	Spacings []SpacingRecord `cbor:"2,keyasint,omitempty"`
}

// SpacingRecord flattens the spacing kinds. Kind is the keyword returned by
// tech.KindName, the remaining fields are those of the matching kind.
type SpacingRecord struct {
	Kind string `cbor:"1,keyasint"`
	Min  int32  `cbor:"2,keyasint"`

	RangeMin           int32 `cbor:"3,keyasint,omitempty"`
	RangeMax           int32 `cbor:"4,keyasint,omitempty"`
	Influence          int32 `cbor:"5,keyasint,omitempty"`
	UseLengthThreshold bool  `cbor:"6,keyasint,omitempty"`
	Width              int32 `cbor:"7,keyasint,omitempty"`
	Within             int32 `cbor:"8,keyasint,omitempty"`
	ParallelEdge       int32 `cbor:"9,keyasint,omitempty"`
	ParallelWithin     int32 `cbor:"10,keyasint,omitempty"`
	TwoEdges           bool  `cbor:"11,keyasint,omitempty"`
	PGOnly             bool  `cbor:"12,keyasint,omitempty"`
	Length             int32 `cbor:"13,keyasint,omitempty"`
	Cuts               int32 `cbor:"14,keyasint,omitempty"`
	CenterToCenter     bool  `cbor:"15,keyasint,omitempty"`
}

type TableRecord struct {
	Lengths []int32                `cbor:"1,keyasint"`
	Rows    []tech.SpacingTableRow `cbor:"2,keyasint"`
}

type ShapeRecord struct {
	Layer string    `cbor:"1,keyasint"`
	Rect  tech.Rect `cbor:"2,keyasint"`
}

type ViaRecord struct {
	Name       string        `cbor:"1,keyasint"`
	Default    bool          `cbor:"2,keyasint"`
	Resistance int32         `cbor:"3,keyasint"`
	Shapes     []ShapeRecord `cbor:"4,keyasint,omitempty"`
}

type ViaRuleLayerRecord struct {
	Layer      string    `cbor:"1,keyasint"`
	Direction  uint8     `cbor:"2,keyasint"`
	Enclosure  [2]int32  `cbor:"3,keyasint"`
	MinWidth   int32     `cbor:"4,keyasint"`
	MaxWidth   int32     `cbor:"5,keyasint"`
	Rect       tech.Rect `cbor:"6,keyasint"`
	CutSpacing [2]int32  `cbor:"7,keyasint"`
}

type ViaRuleRecord struct {
	Name     string               `cbor:"1,keyasint"`
	Generate bool                 `cbor:"2,keyasint"`
	Default  bool                 `cbor:"3,keyasint"`
	Layers   []ViaRuleLayerRecord `cbor:"4,keyasint,omitempty"`
	Vias     []string             `cbor:"5,keyasint,omitempty"`
}

type PropertyRecord struct {
	Name   string `cbor:"1,keyasint"`
	Object uint8  `cbor:"2,keyasint"`
	Type   uint8  `cbor:"3,keyasint"`
}

func spacingRecord(s *tech.Spacing) SpacingRecord {
	r := SpacingRecord{Kind: tech.KindName(s.Kind), Min: s.Min}
	switch k := s.Kind.(type) {
	case tech.RangeSpacing:
		r.RangeMin, r.RangeMax, r.Influence, r.UseLengthThreshold = k.Min, k.Max, k.Influence, k.UseLengthThreshold
	case tech.EndOfLineSpacing:
		r.Width, r.Within, r.ParallelEdge, r.ParallelWithin, r.TwoEdges = k.Width, k.Within, k.ParallelEdge, k.ParallelWithin, k.TwoEdges
	case tech.SameNetSpacing:
		r.PGOnly = k.PGOnly
	case tech.NotchLengthSpacing:
		r.Length = k.Length
	case tech.AdjacentCutsSpacing:
		r.Cuts, r.Within, r.CenterToCenter = k.Cuts, k.Within, k.CenterToCenter
	}
	return r
}

func (r SpacingRecord) kind() (tech.SpacingKind, bool) {
	switch r.Kind {
	case tech.KindName(tech.DefaultSpacing{}):
		return tech.DefaultSpacing{}, true
	case tech.KindName(tech.RangeSpacing{}):
		return tech.RangeSpacing{Min: r.RangeMin, Max: r.RangeMax, Influence: r.Influence, UseLengthThreshold: r.UseLengthThreshold}, true
	case tech.KindName(tech.EndOfLineSpacing{}):
		return tech.EndOfLineSpacing{
			Width: r.Width, Within: r.Within, ParallelEdge: r.ParallelEdge, ParallelWithin: r.ParallelWithin, TwoEdges: r.TwoEdges}, true
	case tech.KindName(tech.SameNetSpacing{}):
		return tech.SameNetSpacing{PGOnly: r.PGOnly}, true
	case tech.KindName(tech.NotchLengthSpacing{}):
		return tech.NotchLengthSpacing{Length: r.Length}, true
	case tech.KindName(tech.AdjacentCutsSpacing{}):
		return tech.AdjacentCutsSpacing{Cuts: r.Cuts, Within: r.Within, CenterToCenter: r.CenterToCenter}, true
	}
	return nil, false
}
