package tech

import "fmt"

// Spacing is a single spacing rule record. Min is the required distance,
// Kind qualifies when it applies.
type Spacing struct {
	Min  int32
	Kind SpacingKind
}

// SpacingKind is one of DefaultSpacing, RangeSpacing, EndOfLineSpacing,
// SameNetSpacing, NotchLengthSpacing or AdjacentCutsSpacing.
type SpacingKind interface {
	spacingKind() string
}

// DefaultSpacing applies between any two shapes on the layer.
type DefaultSpacing struct{}

// RangeSpacing applies to shapes whose width is within [Min, Max].
type RangeSpacing struct {
	Min, Max int32
	// Influence, when non zero, extends the rule to shapes within this
	// distance of a wide shape.
	Influence          int32
	UseLengthThreshold bool
}

// EndOfLineSpacing applies to line ends narrower than Width, within Within
// of the end.
type EndOfLineSpacing struct {
	Width, Within  int32
	ParallelEdge   int32
	ParallelWithin int32
	TwoEdges       bool
}

type SameNetSpacing struct {
	PGOnly bool
}

type NotchLengthSpacing struct {
	Length int32
}

// AdjacentCutsSpacing applies to a cut with Cuts or more neighbours within
// Within.
type AdjacentCutsSpacing struct {
	Cuts           int32
	Within         int32
	CenterToCenter bool
}

func (DefaultSpacing) spacingKind() string      { return "DEFAULT" }
func (RangeSpacing) spacingKind() string        { return "RANGE" }
func (EndOfLineSpacing) spacingKind() string    { return "ENDOFLINE" }
func (SameNetSpacing) spacingKind() string      { return "SAMENET" }
func (NotchLengthSpacing) spacingKind() string  { return "NOTCHLENGTH" }
func (AdjacentCutsSpacing) spacingKind() string { return "ADJACENTCUTS" }

// KindName returns the keyword of a spacing kind. A nil kind is the
// default kind.
func KindName(k SpacingKind) string {
	if k == nil {
		return DefaultSpacing{}.spacingKind()
	}
	return k.spacingKind()
}

// allowedSpacing reports whether layers of type typ accept spacing kind k.
func allowedSpacing(typ LayerType, k SpacingKind) error {
	ok := false
	switch k.(type) {
	case nil, DefaultSpacing:
		ok = true
	case SameNetSpacing:
		ok = typ == LayerRouting || typ == LayerCut
	case RangeSpacing, EndOfLineSpacing, NotchLengthSpacing:
		ok = typ == LayerRouting
	case AdjacentCutsSpacing:
		ok = typ == LayerCut
	}
	if !ok {
		return fmt.Errorf("%w: %s on %v", ErrSpacingKind, KindName(k), typ)
	}
	return nil
}
