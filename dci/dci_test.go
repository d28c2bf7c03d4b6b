package dci

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_WrapsAtFrameCycle(t *testing.T) {
	assert.Equal(t, uint32(53), Interval(5, 3))
	assert.Equal(t, uint32(53), Interval(1029, 3))
	assert.Equal(t, uint32(IntervalCycle-1), Interval(FrameCycle-1, 9))
}

func TestParseFormat_RoundTripsNames(t *testing.T) {
	for f := Format0; f < nofFormats; f++ {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("3")
	assert.Error(t, err)
	assert.Equal(t, "format(12)", Format(12).String())
}

func TestSubframe_Reserve(t *testing.T) {
	// GIVEN a subframe with an 8 CCE control region
	sf := NewSubframe(2, 4, 2)
	sf.ResetControl(8)

	// WHEN two disjoint locations are reserved
	require.NoError(t, sf.Reserve(Location{L: 2, NCCE: 4}))
	require.NoError(t, sf.Reserve(Location{L: 0, NCCE: 1}))

	// THEN
	assert.Equal(t, uint32(5), sf.UsedCCE())
	assert.Equal(t, uint32(24), sf.TTI())
	assert.Error(t, sf.Reserve(Location{L: 0, NCCE: 5}), "overlap")
	assert.Error(t, sf.Reserve(Location{L: 3, NCCE: 0}), "overlaps both")
	assert.Error(t, sf.Reserve(Location{L: 1, NCCE: 1}), "misaligned")
	assert.Error(t, sf.Reserve(Location{L: 4, NCCE: 0}), "bad level")

	sf.ResetControl(8)
	assert.Zero(t, sf.UsedCCE())
}

func TestCellConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultCell().Validate())

	tests := []struct {
		name   string
		mutate func(*CellConfig)
	}{
		{"prb", func(c *CellConfig) { c.NofPRB = 30 }},
		{"ports", func(c *CellConfig) { c.NofPorts = 3 }},
		{"cell id", func(c *CellConfig) { c.ID = 504 }},
		{"cp", func(c *CellConfig) { c.CP = "long" }},
		{"phich resources", func(c *CellConfig) { c.PHICHResources = "1/3" }},
		{"frame type", func(c *CellConfig) { c.FrameType = "sdd" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultCell()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestErrors_WrapAndFormat(t *testing.T) {
	cause := errors.New("boom")
	pe := &ParseError{Line: 7, Field: FieldMCS, Err: cause}
	assert.Equal(t, "parse error at line 7 in field mcs: boom", pe.Error())
	assert.ErrorIs(t, pe, cause)

	ie := &InconsistencyError{Inconsistencies: []Inconsistency{{Field: FieldRNTI, Declared: 100, Decoded: 200}}}
	assert.Equal(t, "strict check failed: inconsistent rnti: declared 100, decoded 200", ie.Error())

	plErr := &PlacementError{TTI: 3, RNTI: 0x46, Location: Location{L: 1, NCCE: 2}, Err: cause}
	assert.ErrorIs(t, plErr, cause)
	assert.Contains(t, plErr.Error(), "rnti=0x0046")
}

func TestNewCodec_PanicsWhenUnregistered(t *testing.T) {
	saved := NewCodecFunc
	defer func() { NewCodecFunc = saved }()
	NewCodecFunc = nil
	assert.Panics(t, func() { NewCodec() })
}
