package trace

// TraceSummary aggregates statistics from a ScheduleTrace.
type TraceSummary struct {
	Subframes           int
	MatchedSubframes    int
	TotalPlacements     int
	Verified            int
	Unverified          int
	MeanCCEUtilization  float64 // used/available over subframes with a control region
	MaxCCEUtilization   float64
	UniqueRNTIs         int
	RNTIDistribution    map[uint16]int // RNTI → number of placements
	AggregationLevelHit map[uint32]int // log2 aggregation level → number of placements
}

// Summarize computes aggregate statistics from a ScheduleTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *ScheduleTrace) *TraceSummary {
	summary := &TraceSummary{
		RNTIDistribution:    make(map[uint16]int),
		AggregationLevelHit: make(map[uint32]int),
	}
	if st == nil {
		return summary
	}

	summary.Subframes = len(st.Subframes)
	totalUtil := 0.0
	withRegion := 0
	for _, sf := range st.Subframes {
		if sf.Matched {
			summary.MatchedSubframes++
		}
		if sf.NofCCE == 0 {
			continue
		}
		util := float64(sf.UsedCCE) / float64(sf.NofCCE)
		totalUtil += util
		withRegion++
		if util > summary.MaxCCEUtilization {
			summary.MaxCCEUtilization = util
		}
	}
	if withRegion > 0 {
		summary.MeanCCEUtilization = totalUtil / float64(withRegion)
	}

	summary.TotalPlacements = len(st.Placements)
	for _, p := range st.Placements {
		summary.RNTIDistribution[p.RNTI]++
		summary.AggregationLevelHit[p.Aggregation]++
		if !p.Checked {
			continue
		}
		if p.Verified {
			summary.Verified++
		} else {
			summary.Unverified++
		}
	}
	summary.UniqueRNTIs = len(summary.RNTIDistribution)

	return summary
}
