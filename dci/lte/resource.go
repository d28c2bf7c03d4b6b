package lte

import (
	"fmt"
	"math/bits"
)

// rivBits returns the width of the resource indication value field for nofPRB.
func rivBits(nofPRB uint32) int {
	n := nofPRB * (nofPRB + 1) / 2
	return bits.Len32(n - 1)
}

// RIV encodes a contiguous allocation of length crbs starting at start.
func RIV(nofPRB, start, crbs uint32) (uint32, error) {
	if crbs == 0 || start+crbs > nofPRB {
		return 0, fmt.Errorf("allocation start=%d len=%d exceeds %d PRB", start, crbs, nofPRB)
	}
	if crbs-1 <= nofPRB/2 {
		return nofPRB*(crbs-1) + start, nil
	}
	return nofPRB*(nofPRB-crbs+1) + (nofPRB - 1 - start), nil
}

// DecodeRIV returns the start and length of the allocation encoded by riv.
func DecodeRIV(nofPRB, riv uint32) (start, crbs uint32, err error) {
	if riv >= nofPRB*(nofPRB+1)/2 {
		return 0, 0, fmt.Errorf("riv %d out of range for %d PRB", riv, nofPRB)
	}
	crbs = riv/nofPRB + 1
	start = riv % nofPRB
	if start+crbs > nofPRB {
		crbs = nofPRB - crbs + 2
		start = nofPRB - 1 - start
	}
	return start, crbs, nil
}

// rbgSize returns the resource block group size P for type 0 allocations.
func rbgSize(nofPRB uint32) uint32 {
	switch {
	case nofPRB <= 10:
		return 1
	case nofPRB <= 26:
		return 2
	case nofPRB <= 63:
		return 3
	default:
		return 4
	}
}

// rbgBits returns the width of the type 0 bitmap.
func rbgBits(nofPRB uint32) int {
	p := rbgSize(nofPRB)
	return int((nofPRB + p - 1) / p)
}

// allocHeaderBits is the resource allocation header width (type 0/1 selector).
func allocHeaderBits(nofPRB uint32) int {
	if nofPRB > 10 {
		return 1
	}
	return 0
}
