package lte

import (
	"fmt"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/bits"
)

// MIBBits is the BCH transport block size.
const MIBBits = 24

var bandwidthCode = map[uint32]uint32{6: 0, 15: 1, 25: 2, 50: 3, 75: 4, 100: 5}

var phichResourceCode = map[dci.PHICHResources]uint32{
	dci.PHICHR1_6: 0, dci.PHICHR1_2: 1, dci.PHICHR1: 2, dci.PHICHR2: 3,
}

// PackMIB packs the master information block for frame sfn (36.331 MasterInformationBlock).
func PackMIB(cell dci.CellConfig, sfn uint32) ([]byte, error) {
	bw, ok := bandwidthCode[cell.NofPRB]
	if !ok {
		return nil, fmt.Errorf("no MIB bandwidth code for %d PRB", cell.NofPRB)
	}
	res, ok := phichResourceCode[cell.PHICHResources]
	if !ok {
		return nil, fmt.Errorf("no MIB code for phich resources %q", cell.PHICHResources)
	}
	buf := make([]byte, MIBBits/8)
	w, err := bits.NewWriter(buf, MIBBits)
	if err != nil {
		return nil, err
	}
	fields := []struct {
		v uint32
		n int
	}{
		{bw, 3},
		{flag(cell.PHICHLength == dci.PHICHExtended), 1},
		{res, 2},
		{(sfn % dci.FrameCycle) >> 2, 8},
		{0, 10}, // spare
	}
	for _, f := range fields {
		if err := w.WriteBits(f.v, f.n); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
