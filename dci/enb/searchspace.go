package enb

import (
	"fmt"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// SearchSpaceCache holds the UE-specific search space of one RNTI for every
// (CFI, subframe) pair. It is built once and read-only afterwards.
type SearchSpaceCache struct {
	rnti      uint16
	nofCCE    [dci.MaxCFI]uint32
	locations [dci.MaxCFI][dci.SubframesPerFrame][]dci.Location
}

// NewSearchSpaceCache computes the candidates of rnti for CFI 1..3 and all subframes.
func NewSearchSpaceCache(codec dci.Codec, cell dci.CellConfig, rnti uint16) (*SearchSpaceCache, error) {
	c := &SearchSpaceCache{rnti: rnti}
	for cfi := uint32(1); cfi <= dci.MaxCFI; cfi++ {
		n, err := codec.NofCCE(cell, cfi)
		if err != nil {
			return nil, fmt.Errorf("control region size for cfi %d: %w", cfi, err)
		}
		c.nofCCE[cfi-1] = n
		for sf := uint32(0); sf < dci.SubframesPerFrame; sf++ {
			c.locations[cfi-1][sf] = codec.CandidateLocations(rnti, sf, n)
		}
	}
	return c, nil
}

// RNTI returns the identifier the cache was built for.
func (c *SearchSpaceCache) RNTI() uint16 { return c.rnti }

// NofCCE returns the control region size used for cfi, or 0 for an invalid cfi.
func (c *SearchSpaceCache) NofCCE(cfi uint32) uint32 {
	if cfi < 1 || cfi > dci.MaxCFI {
		return 0
	}
	return c.nofCCE[cfi-1]
}

// Locations returns the candidates for cfi (1..3) and subframe sfIdx, or nil
// when either is out of range.
func (c *SearchSpaceCache) Locations(cfi, sfIdx uint32) []dci.Location {
	if cfi < 1 || cfi > dci.MaxCFI || sfIdx >= dci.SubframesPerFrame {
		return nil
	}
	return c.locations[cfi-1][sfIdx]
}

// Contains reports whether loc is a candidate for cfi and sfIdx.
func (c *SearchSpaceCache) Contains(cfi, sfIdx uint32, loc dci.Location) bool {
	for _, l := range c.Locations(cfi, sfIdx) {
		if l == loc {
			return true
		}
	}
	return false
}
