package lte

import (
	"fmt"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

const (
	regsPerCCE  = 9
	pcfichREGs  = 4
	phichGroupR = 3 // REGs per PHICH group
)

// phichNg returns Ng as a fraction.
func phichNg(r dci.PHICHResources) (num, den uint32, err error) {
	switch r {
	case dci.PHICHR1_6:
		return 1, 6, nil
	case dci.PHICHR1_2:
		return 1, 2, nil
	case dci.PHICHR1:
		return 1, 1, nil
	case dci.PHICHR2:
		return 2, 1, nil
	default:
		return 0, 0, fmt.Errorf("unknown phich resources %q", r)
	}
}

// PHICHGroups returns the number of PHICH groups (36.211 §6.9).
func PHICHGroups(cell dci.CellConfig) (uint32, error) {
	num, den, err := phichNg(cell.PHICHResources)
	if err != nil {
		return 0, err
	}
	groups := (num*cell.NofPRB + 8*den - 1) / (8 * den)
	if cell.CP == dci.CPExtended {
		groups *= 2
	}
	return groups, nil
}

// controlSymbols returns the number of OFDM symbols of the control region.
// Cells of 10 PRB or less use one more symbol than the CFI value.
func controlSymbols(cell dci.CellConfig, cfi uint32) uint32 {
	if cell.NofPRB <= 10 {
		return cfi + 1
	}
	return cfi
}

// regsInSymbol returns the REGs available in OFDM symbol l of the control region.
// Symbol 0 carries reference signals of ports 0/1, symbol 1 those of ports 2/3.
func regsInSymbol(cell dci.CellConfig, l uint32) uint32 {
	switch {
	case l == 0:
		return 2 * cell.NofPRB
	case l == 1 && cell.NofPorts == 4:
		return 2 * cell.NofPRB
	default:
		return 3 * cell.NofPRB
	}
}

// NofCCE returns the number of CCEs available for PDCCH for cfi (1..3).
func NofCCE(cell dci.CellConfig, cfi uint32) (uint32, error) {
	if cfi < 1 || cfi > dci.MaxCFI {
		return 0, fmt.Errorf("cfi %d out of range 1..%d", cfi, dci.MaxCFI)
	}
	groups, err := PHICHGroups(cell)
	if err != nil {
		return 0, err
	}
	var regs uint32
	for l := uint32(0); l < controlSymbols(cell, cfi); l++ {
		regs += regsInSymbol(cell, l)
	}
	reserved := pcfichREGs + phichGroupR*groups
	if regs <= reserved {
		return 0, nil
	}
	return (regs - reserved) / regsPerCCE, nil
}
