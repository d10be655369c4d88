// Package segmented implements the linked, fixed capacity segment array used
// for collections too large to reallocate as a single block.
//
// A segmented array of size N is a chain of Segment records, each holding N
// handle slots. The first N-1 slots hold data. The last slot of every
// segment except the tail holds the handle of the next segment. The first
// segment, the header, also carries the bookkeeping for the whole chain:
// the tail segment, the number of segments after the header up to the tail,
// and the number of slots used in the tail.
//
// Segments are allocated from an arena and never move, so growing the array
// never copies existing elements.
package segmented

import (
	"errors"

	"github.com/forestrie/go-celldb/handle"
)

// Size is the number of slots per segment, including the link slot.
type Size uint16

const (
	// SizeMin is the smallest usable segment, three data slots and a link.
	SizeMin     Size = 4
	Size8       Size = 8
	Size16      Size = 16
	Size32      Size = 32
	Size64      Size = 64
	Size128     Size = 128
	Size256     Size = 256
	SizeHighest Size = 503

	DefaultSize = Size64
)

func (n Size) Valid() bool { return n >= SizeMin && n <= SizeHighest }

var (
	ErrSegmentSize = errors.New("segment size out of range")
	ErrNotHeader   = errors.New("segment is not the header of its array")
	ErrCorruptLink = errors.New("segment chain references an invalid segment")
)

// Segment is the pooled record. Only the header's tail, tailCount, tailSize
// and spare fields are meaningful.
type Segment struct {
	self   handle.Handle
	header handle.Handle
	prev   handle.Handle

	tail      handle.Handle
	tailCount uint32
	tailSize  uint32
	// spare counts reserved segments linked after the tail.
	spare uint32

	slots []handle.Handle
}

// IsHeader reports whether the segment is the first of its chain.
func (s *Segment) IsHeader() bool { return s.self == s.header }

// Header returns the handle of the first segment of the chain.
func (s *Segment) Header() handle.Handle { return s.header }
