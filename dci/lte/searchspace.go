package lte

import "github.com/pdcch-replay/pdcch-replay/dci"

// 36.213 §9.1.1 hashing constants.
const (
	hashA = 39827
	hashD = 65537
)

// Number of UE-specific PDCCH candidates per aggregation level index.
var ueCandidates = [4]uint32{6, 6, 2, 2}

// hashY returns Y_k for subframe k, starting from Y_-1 = rnti.
func hashY(rnti uint16, sfIdx uint32) uint32 {
	y := uint32(rnti)
	for k := uint32(0); k <= sfIdx; k++ {
		y = (hashA * y) % hashD
	}
	return y
}

// CandidateLocations returns the distinct UE-specific PDCCH candidates of rnti
// in subframe sfIdx, largest aggregation level first.
func CandidateLocations(rnti uint16, sfIdx, nofCCE uint32) []dci.Location {
	y := hashY(rnti, sfIdx%dci.SubframesPerFrame)
	out := make([]dci.Location, 0, 16)
	seen := make(map[dci.Location]bool)
	for l := 3; l >= 0; l-- {
		size := uint32(1) << uint(l)
		slots := nofCCE / size
		if slots == 0 {
			continue
		}
		for m := uint32(0); m < ueCandidates[l]; m++ {
			loc := dci.Location{L: uint32(l), NCCE: size * ((y + m) % slots)}
			if loc.NCCE+size > nofCCE || seen[loc] {
				continue
			}
			seen[loc] = true
			out = append(out, loc)
		}
	}
	return out
}
