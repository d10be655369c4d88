package handle

import "fmt"

const (
	// ArenaBits is the width of the issuing arena number.
	ArenaBits = 24
	// SeqBits is the width of the per arena sequence.
	SeqBits = 64 - ArenaBits

	MaxArena = (uint64(1) << ArenaBits) - 1
	MaxSeq   = (uint64(1) << SeqBits) - 1
)

// Handle is the untyped identity of a pooled record.
type Handle uint64

// Nil is the absent sentinel.
const Nil Handle = 0

// New composes a handle from the issuing arena number and sequence.
//
// Neither component may be zero: sequence zero is reserved so that Nil can
// never be a valid handle of any arena.
func New(arena uint32, seq uint64) Handle {
	if uint64(arena) > MaxArena || arena == 0 {
		panic(fmt.Sprintf("handle: arena number %d out of range", arena))
	}
	if seq > MaxSeq || seq == 0 {
		panic(fmt.Sprintf("handle: sequence %d out of range", seq))
	}
	return Handle(uint64(arena)<<SeqBits | seq)
}

func (h Handle) IsNil() bool { return h == Nil }

// Arena returns the number of the arena that issued the handle.
func (h Handle) Arena() uint32 {
	return uint32(uint64(h) >> SeqBits)
}

// Seq returns the per arena sequence.
func (h Handle) Seq() uint64 {
	return uint64(h) & MaxSeq
}

func (h Handle) String() string {
	if h == Nil {
		return "nil"
	}
	return fmt.Sprintf("%d:%d", h.Arena(), h.Seq())
}

// Kind identifies the record type a slot was allocated for. Kinds are
// assigned by each arena, starting at 1. Zero means "no kind" and is what a
// dead directory entry carries.
type Kind uint16

const NoKind Kind = 0
