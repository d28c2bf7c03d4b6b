package enb

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/trace"
)

func TestScheduler_PlacesOnlyInMatchingSubframes(t *testing.T) {
	// GIVEN groups at tti 53 and 57 in frame 5
	src := &sliceSource{groups: []group{
		{interval: 53, cfi: 2, dl: []dci.Message{dl(100, 1, 0)}, ul: []dci.Message{ul(101, 0, 4)}},
		{interval: 57, cfi: 1, dl: []dci.Message{dl(102, 2, 0)}},
	}}
	sink := &recordingSink{}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{}, sink)
	require.NoError(t, err)

	// WHEN run to the end of the trace
	st, err := s.Run(context.Background())

	// THEN transmission starts at frame 5 subframe 0 and stops after tti 53,
	// once loading tti 57 has ended the source
	require.NoError(t, err)
	require.Len(t, sink.subframes, 4)
	assert.Equal(t, uint32(50), sink.subframes[0].TTI())
	for _, sf := range sink.subframes {
		if sf.TTI() == 53 {
			assert.Len(t, sf.Placements, 2)
		} else {
			assert.Empty(t, sf.Placements, "tti %d", sf.TTI())
		}
	}
	assert.Equal(t, 1, st.Matched)
	assert.Equal(t, 1, st.DownlinkPlaced)
	assert.Equal(t, 1, st.UplinkPlaced)
	assert.Equal(t, 4, st.Subframes)
	assert.Equal(t, 0, st.Frames)
}

func TestScheduler_DrainLastTransmitsFinalGroup(t *testing.T) {
	// GIVEN groups at tti 53 and 57 and DrainLast set
	src := &sliceSource{groups: []group{
		{interval: 53, cfi: 2, dl: []dci.Message{dl(100, 1, 0)}, ul: []dci.Message{ul(101, 0, 4)}},
		{interval: 57, cfi: 1, dl: []dci.Message{dl(102, 2, 0)}},
	}}
	sink := &recordingSink{}
	cfg := DefaultConfig()
	cfg.DrainLast = true
	s, _, err := quietScheduler(cfg, src, &stubCodec{}, sink)
	require.NoError(t, err)

	// WHEN run
	st, err := s.Run(context.Background())

	// THEN the run continues through tti 57 and places its group
	require.NoError(t, err)
	require.Len(t, sink.subframes, 8)
	assert.Len(t, sink.subframes[7].Placements, 1)
	assert.Equal(t, uint32(57), sink.subframes[7].TTI())
	assert.Equal(t, 2, st.Matched)
	assert.Equal(t, 2, st.DownlinkPlaced)
}

func TestScheduler_SingleGroupIsTransmitted(t *testing.T) {
	src := &sliceSource{groups: []group{{interval: 2, cfi: 1, dl: []dci.Message{dl(1, 0, 0)}}}}
	sink := &recordingSink{}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{}, sink)
	require.NoError(t, err)

	st, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, st.Matched)
	assert.Len(t, sink.subframes, 3)
}

func TestScheduler_CFIRetainedBetweenSparseIntervals(t *testing.T) {
	// GIVEN cfi 3 at tti 52 and cfi 1 at tti 55, followed by a final group
	src := &sliceSource{groups: []group{
		{interval: 52, cfi: 3, dl: []dci.Message{dl(1, 0, 0)}},
		{interval: 55, cfi: 1, dl: []dci.Message{dl(2, 0, 0)}},
		{interval: 58, cfi: 2},
	}}
	sink := &recordingSink{}
	cfg := DefaultConfig()
	s, _, err := quietScheduler(cfg, src, &stubCodec{}, sink)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	// THEN the default applies first, then each adopted cfi sticks
	var cfis []uint32
	for _, sf := range sink.subframes {
		cfis = append(cfis, sf.CFI)
	}
	assert.Equal(t, []uint32{2, 2, 3, 3, 3, 1}, cfis)
}

func TestScheduler_PlacementFailureAborts(t *testing.T) {
	// GIVEN two DCIs overlapping at ncce 0 in tti 51
	src := &sliceSource{groups: []group{
		{interval: 51, cfi: 2, dl: []dci.Message{dl(1, 1, 0), dl(2, 0, 1)}},
		{interval: 52, cfi: 2, dl: []dci.Message{dl(3, 0, 0)}},
	}}
	sink := &recordingSink{}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{}, sink)
	require.NoError(t, err)

	// WHEN run
	_, err = s.Run(context.Background())

	// THEN the run aborts before emitting the corrupt subframe
	var pe *dci.PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(51), pe.TTI)
	assert.Equal(t, uint16(2), pe.RNTI)
	require.Len(t, sink.subframes, 1, "only tti 50 was written")
}

func TestScheduler_RenderFailureAborts(t *testing.T) {
	src := &sliceSource{groups: []group{{interval: 0, cfi: 1, ul: []dci.Message{ul(9, 0, 0)}}}}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{renderFail: 9}, &recordingSink{})
	require.NoError(t, err)

	_, err = s.Run(context.Background())

	assert.ErrorIs(t, err, errMalformed)
}

func TestScheduler_EmptySource_NoInput(t *testing.T) {
	s, _, err := quietScheduler(DefaultConfig(), &sliceSource{}, &stubCodec{}, &recordingSink{})
	require.NoError(t, err)

	_, err = s.Run(context.Background())

	assert.ErrorIs(t, err, dci.ErrNoInput)
}

func TestScheduler_FrameBudget(t *testing.T) {
	// GIVEN a group far in the future and a budget of two frames
	src := &sliceSource{groups: []group{
		{interval: 10, cfi: 1, dl: []dci.Message{dl(1, 0, 0)}},
		{interval: 900, cfi: 1, dl: []dci.Message{dl(2, 0, 0)}},
		{interval: 950, cfi: 1},
	}}
	sink := &recordingSink{}
	cfg := DefaultConfig()
	cfg.Frames = 2
	s, _, err := quietScheduler(cfg, src, &stubCodec{}, sink)
	require.NoError(t, err)

	// WHEN run
	st, err := s.Run(context.Background())

	// THEN exactly two frames are emitted
	require.NoError(t, err)
	assert.Equal(t, 2, st.Frames)
	assert.Len(t, sink.subframes, 2*dci.SubframesPerFrame)
	assert.Equal(t, uint32(29), sink.subframes[len(sink.subframes)-1].TTI())
}

func TestScheduler_CancelledContextStopsGracefully(t *testing.T) {
	src := &sliceSource{groups: []group{{interval: 5000, cfi: 1}}}
	sink := &recordingSink{}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{}, sink)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := s.Run(ctx)

	require.NoError(t, err)
	assert.Zero(t, st.Subframes)
	assert.Empty(t, sink.subframes)
}

func TestScheduler_IntervalWrapsAcrossFrameCycle(t *testing.T) {
	// GIVEN a group at the last tti of the cycle followed by tti 1
	src := &sliceSource{groups: []group{
		{interval: dci.IntervalCycle - 1, cfi: 1, dl: []dci.Message{dl(1, 0, 0)}},
		{interval: 1, cfi: 1, dl: []dci.Message{dl(2, 0, 0)}},
		{interval: 2, cfi: 1},
	}}
	sink := &recordingSink{}
	s, _, err := quietScheduler(DefaultConfig(), src, &stubCodec{}, sink)
	require.NoError(t, err)

	st, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, st.Matched)
	last := sink.subframes[len(sink.subframes)-1]
	assert.Equal(t, uint32(0), last.SFN)
	assert.Equal(t, uint32(1), last.Index)
}

func TestScheduler_VerifiesCachedRNTI(t *testing.T) {
	// GIVEN the cached UE placed at L=2 in an even and an odd subframe
	cfg := DefaultConfig()
	src := &sliceSource{groups: []group{
		{interval: 2, cfi: 2, dl: []dci.Message{dl(cfg.RNTI, 1, 2)}, rejected: []error{errMalformed}},
		{interval: 3, cfi: 2, dl: []dci.Message{dl(cfg.RNTI, 1, 2)}},
		{interval: 4, cfi: 2},
	}}
	st0 := trace.NewScheduleTrace(trace.TraceLevelPlacements)
	s, hook, err := quietScheduler(cfg, src, &stubCodec{}, &recordingSink{})
	require.NoError(t, err)
	s.SetTrace(st0)

	// WHEN run
	st, err := s.Run(context.Background())

	// THEN the odd subframe placement is flagged but still transmitted
	require.NoError(t, err)
	assert.Equal(t, 1, st.Verified)
	assert.Equal(t, 1, st.Unverified)
	assert.Equal(t, 2, st.DownlinkPlaced)
	assert.Equal(t, 1, st.Rejected)
	assert.NotNil(t, hook.LastEntry())

	summary := trace.Summarize(st0)
	assert.Equal(t, 2, summary.TotalPlacements)
	assert.Equal(t, 1, summary.Unverified)
	assert.Equal(t, 4, summary.Subframes)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Frames = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultCFI = 4
	assert.ErrorContains(t, cfg.Validate(), "default_cfi")
}

func TestStats_Print(t *testing.T) {
	var buf bytes.Buffer
	Stats{Subframes: 20, Frames: 2, Matched: 3, Verified: 1, Unverified: 1}.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Replay Metrics ===")
	assert.Contains(t, out, "Matched Intervals    : 3")
	assert.Contains(t, out, "Search Space Hits    : 1/2")
}
