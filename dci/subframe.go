package dci

import "fmt"

// Placement is one DCI written into a subframe's control region.
type Placement struct {
	Location Location
	Bits     ChannelBits
}

// Subframe is the per-TTI buffer the scheduler fills and hands to the sink.
// It records what the physical layer put into the subframe; IQ synthesis is
// left to the sink.
type Subframe struct {
	SFN   uint32
	Index uint32
	CFI   uint32

	// Baseline content set by Codec.Baseline.
	Sync             bool   // PSS/SSS present (subframes 0 and 5)
	ReferenceSignals bool   // cell-specific reference signals present
	MIB              []byte // packed BCH payload, subframe 0 only

	Placements []Placement

	cce []bool
}

// NewSubframe returns an empty subframe for the given frame, index and CFI.
func NewSubframe(sfn, index, cfi uint32) *Subframe {
	return &Subframe{SFN: sfn, Index: index, CFI: cfi}
}

// TTI returns the subframe's interval id.
func (s *Subframe) TTI() uint32 { return Interval(s.SFN, s.Index) }

// ResetControl clears all placements and sizes the control region to nofCCE elements.
func (s *Subframe) ResetControl(nofCCE uint32) {
	s.Placements = s.Placements[:0]
	s.cce = make([]bool, nofCCE)
}

// NofCCE returns the size of the control region.
func (s *Subframe) NofCCE() uint32 { return uint32(len(s.cce)) }

// UsedCCE returns the number of occupied control channel elements.
func (s *Subframe) UsedCCE() uint32 {
	var n uint32
	for _, used := range s.cce {
		if used {
			n++
		}
	}
	return n
}

// Reserve marks the CCEs of loc as occupied. It fails when the location is
// misaligned, exceeds the control region or overlaps an earlier placement.
func (s *Subframe) Reserve(loc Location) error {
	if loc.L > 3 {
		return fmt.Errorf("aggregation level index %d out of range", loc.L)
	}
	n := loc.NofCCE()
	if loc.NCCE%n != 0 {
		return fmt.Errorf("ncce %d not aligned to %d CCEs", loc.NCCE, n)
	}
	if loc.NCCE+n > uint32(len(s.cce)) {
		return fmt.Errorf("ncce %d+%d exceeds control region of %d CCEs", loc.NCCE, n, len(s.cce))
	}
	for i := loc.NCCE; i < loc.NCCE+n; i++ {
		if s.cce[i] {
			return fmt.Errorf("cce %d already in use", i)
		}
	}
	for i := loc.NCCE; i < loc.NCCE+n; i++ {
		s.cce[i] = true
	}
	return nil
}
