// Package trace provides decision-trace recording for scheduler analysis.
// This package has no dependencies on dci/ or its sub-packages; it stores pure data types.
package trace

// SubframeRecord captures one transmitted subframe.
type SubframeRecord struct {
	TTI     uint32
	CFI     uint32
	Matched bool // the replay group for this TTI was injected
	NofCCE  uint32
	UsedCCE uint32
}

// PlacementRecord captures a single DCI placement.
type PlacementRecord struct {
	TTI         uint32
	RNTI        uint16
	Downlink    bool
	Format      string
	Aggregation uint32 // log2 aggregation level
	NCCE        uint32
	// Checked is set when the RNTI is the cached UE; Verified then reports
	// whether the location was one of its search-space candidates.
	Checked  bool
	Verified bool
}
