package lte

import (
	"fmt"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// Codec implements dci.Codec for LTE FDD cells.
type Codec struct{}

var _ dci.Codec = (*Codec)(nil)

// New returns the reference codec.
func New() *Codec { return &Codec{} }

// Decode unpacks raw. The RNTI and location are not carried in the payload:
// the RNTI is recovered from the CRC mask and the location from blind
// decoding, so both are taken from raw.
func (c *Codec) Decode(cell dci.CellConfig, raw dci.Raw) (dci.Message, error) {
	msg := dci.Message{
		Direction: raw.Direction,
		RNTI:      raw.RNTI,
		Format:    raw.Format,
		Location:  raw.Location,
	}
	if err := unpack(cell, raw, &msg); err != nil {
		return dci.Message{}, err
	}
	if msg.Format.MultiCodeword() {
		for cw := range msg.TB {
			msg.TB[cw].Enabled = !(msg.TB[cw].MCS == 0 && msg.TB[cw].RV == 1)
		}
	} else {
		msg.TB[0].Enabled = true
	}
	return msg, nil
}

// Render packs msg and attaches the RNTI-masked CRC.
func (c *Codec) Render(cell dci.CellConfig, sf *dci.Subframe, msg dci.Message) (dci.ChannelBits, error) {
	payload, n, err := pack(cell, &msg)
	if err != nil {
		return dci.ChannelBits{}, fmt.Errorf("rendering %s at tti %d: %w", msg.Format, sf.TTI(), err)
	}
	coded, total, err := attachCRC(payload, n, msg.RNTI)
	if err != nil {
		return dci.ChannelBits{}, err
	}
	return dci.ChannelBits{
		Direction: msg.Direction,
		Format:    msg.Format,
		RNTI:      msg.RNTI,
		Payload:   coded,
		NofBits:   total,
	}, nil
}

// Place reserves the CCEs of loc and records the placement.
func (c *Codec) Place(sf *dci.Subframe, loc dci.Location, b dci.ChannelBits) error {
	if err := sf.Reserve(loc); err != nil {
		return err
	}
	sf.Placements = append(sf.Placements, dci.Placement{Location: loc, Bits: b})
	return nil
}

// CandidateLocations returns the UE-specific search space of rnti.
func (c *Codec) CandidateLocations(rnti uint16, sfIdx, nofCCE uint32) []dci.Location {
	return CandidateLocations(rnti, sfIdx, nofCCE)
}

// NofCCE returns the control region size for cfi.
func (c *Codec) NofCCE(cell dci.CellConfig, cfi uint32) (uint32, error) {
	return NofCCE(cell, cfi)
}

// Baseline marks synchronisation and reference signals, packs the MIB in
// subframe 0 and resets the control region for sf.CFI.
func (c *Codec) Baseline(cell dci.CellConfig, sf *dci.Subframe) error {
	n, err := NofCCE(cell, sf.CFI)
	if err != nil {
		return err
	}
	sf.ReferenceSignals = true
	sf.Sync = sf.Index == 0 || sf.Index == 5
	sf.MIB = nil
	if sf.Index == 0 {
		if sf.MIB, err = PackMIB(cell, sf.SFN); err != nil {
			return err
		}
	}
	sf.ResetControl(n)
	return nil
}
