package arena

import (
	"fmt"
	"strings"

	"github.com/forestrie/go-celldb/handle"
)

type PoolStats struct {
	Kind         handle.Kind
	Type         string
	Pages        int
	SlotsPerPage int
	// Carved counts the slots ever handed out from the pages, Live those
	// currently holding a record and Free those waiting for reuse.
	Carved int
	Live   int
	Free   int
}

type Stats struct {
	Arena  uint32
	Issued uint64
	Pools  []PoolStats
}

func (a *Arena) Stats() Stats {
	s := Stats{Arena: a.number, Issued: a.seq}
	for _, p := range a.pools {
		s.Pools = append(s.Pools, p.stats())
	}
	return s
}

// Live sums the live records of every pool.
func (s Stats) Live() int {
	n := 0
	for _, p := range s.Pools {
		n += p.Live
	}
	return n
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "arena %d: %d handles issued, %d live\n", s.Arena, s.Issued, s.Live())
	for _, p := range s.Pools {
		fmt.Fprintf(&b, "  %-32s pages %4d x %-5d live %8d free %8d\n",
			p.Type, p.Pages, p.SlotsPerPage, p.Live, p.Free)
	}
	return b.String()
}
