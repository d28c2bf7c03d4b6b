package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/replay"
)

// lteLine builds a trace line whose payload the LTE codec decodes
// consistently for the default 25 PRB cell: an all-zero format 0 grant or a
// format 1A assignment with only the format flag set.
func lteLine(sfn, sfIdx uint32, rnti uint16, dir dci.Direction, agg, ncce, cfi uint32) string {
	code, payload := 0, "00000000"
	if dir == dci.Downlink {
		code, payload = 3, "80000000"
	}
	return fmt.Sprintf("0.0\t%d\t%d\t%d\t%d\t0\t4\t0\t0\t-1\t%d\t0\t-1\t0\t%d\t%d\t%d\t0\t25\t%s",
		sfn, sfIdx, rnti, dir, code, ncce, agg, cfi, payload)
}

func writeTrace(t *testing.T, lines ...string) string {
	return writeFile(t, "trace.tsv", strings.Join(lines, "\n")+"\n")
}

func sampleTrace(t *testing.T) string {
	return writeTrace(t,
		lteLine(5, 3, 0x1234, dci.Downlink, 2, 0, 2),
		lteLine(5, 3, 70, dci.Uplink, 1, 4, 2),
		"corrupt line",
		lteLine(5, 4, 71, dci.Downlink, 1, 0, 1),
	)
}

func TestRunReplay_DiscardOutput(t *testing.T) {
	// GIVEN a two-interval trace and a discarding output
	cfg := DefaultRunConfig()
	cfg.Input = sampleTrace(t)
	cfg.Output = outputDiscard
	cfg.TraceLevel = "placements"

	// WHEN replayed
	var out bytes.Buffer
	st, err := runReplay(context.Background(), cfg, &out)

	// THEN the run stops once the trace has ended after tti 53
	require.NoError(t, err)
	assert.Equal(t, 1, st.Matched)
	assert.Equal(t, 1, st.DownlinkPlaced)
	assert.Equal(t, 1, st.UplinkPlaced)
	assert.Equal(t, 1, st.Rejected)
	assert.Equal(t, 0, st.Inconsistent)
	assert.Equal(t, 4, st.Subframes, "tti 50 through 53")
	assert.Contains(t, out.String(), "=== Replay Metrics ===")
	assert.Contains(t, out.String(), "=== Placement Trace ===")
}

func TestRunReplay_DrainLastTransmitsFinalGroup(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Input = sampleTrace(t)
	cfg.Output = outputDiscard
	cfg.Scheduler.DrainLast = true

	st, err := runReplay(context.Background(), cfg, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 2, st.Matched)
	assert.Equal(t, 2, st.DownlinkPlaced)
	assert.Equal(t, 5, st.Subframes, "tti 50 through 54")
}

func TestInspectTrace_CountsRejectsWithoutGroups(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Input = writeTrace(t, "garbage", "more garbage")

	var out bytes.Buffer
	require.NoError(t, inspectTrace(cfg, "json", "", &out))

	var s replay.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Zero(t, s.Groups)
	assert.Equal(t, 2, s.Rejected)
}

func TestRunReplay_ParquetOutput(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Input = sampleTrace(t)
	cfg.Output = filepath.Join(t.TempDir(), "out.parquet")

	_, err := runReplay(context.Background(), cfg, &bytes.Buffer{})

	require.NoError(t, err)
	info, err := os.Stat(cfg.Output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunReplay_OverlappingDCIAborts(t *testing.T) {
	// GIVEN two DCIs declared on the same CCEs
	cfg := DefaultRunConfig()
	cfg.Input = writeTrace(t,
		lteLine(0, 1, 70, dci.Uplink, 1, 2, 2),
		lteLine(0, 1, 71, dci.Downlink, 0, 3, 2),
	)
	cfg.Output = outputDiscard

	_, err := runReplay(context.Background(), cfg, &bytes.Buffer{})

	// THEN the uplink grant, injected after the downlink, fails
	var pe *dci.PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint16(70), pe.RNTI)
	assert.Equal(t, uint32(1), pe.TTI)
}

func TestRunReplay_MissingInput(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Input = filepath.Join(t.TempDir(), "none.tsv")
	cfg.Output = outputDiscard

	_, err := runReplay(context.Background(), cfg, &bytes.Buffer{})

	assert.ErrorIs(t, err, dci.ErrNoInput)
}

func TestInspectTrace_JSONSummaryAndParquet(t *testing.T) {
	// GIVEN the sample trace
	cfg := DefaultRunConfig()
	cfg.Input = sampleTrace(t)
	logPath := filepath.Join(t.TempDir(), "decoded.parquet")

	// WHEN inspected as json with a decode log
	var out bytes.Buffer
	require.NoError(t, inspectTrace(cfg, "json", logPath, &out))

	// THEN the summary counts groups, directions and the rejected line
	var s replay.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, 2, s.Groups)
	assert.Equal(t, 2, s.Downlink)
	assert.Equal(t, 1, s.Uplink)
	assert.Equal(t, 1, s.ParseErrors)
	assert.Equal(t, 0, s.Inconsistent)
	assert.Equal(t, uint32(53), s.FirstInterval)
	_, err := os.Stat(logPath)
	assert.NoError(t, err)
}

func TestInspectTrace_YAMLAndBadFormat(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Input = sampleTrace(t)

	var out bytes.Buffer
	require.NoError(t, inspectTrace(cfg, "yaml", "", &out))
	assert.Contains(t, out.String(), "groups: 2")

	assert.ErrorContains(t, inspectTrace(cfg, "xml", "", &out), "xml")
}

func TestWriteSearchSpace_ListsAllPairs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSearchSpace(DefaultRunConfig(), &out))

	text := out.String()
	assert.Contains(t, text, "RNTI 0x1234, 25 PRB")
	// L=8 at ncce 0 is the first candidate of subframe 0 with 12 CCEs
	assert.Contains(t, text, "8@0")
}
