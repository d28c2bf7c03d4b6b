package replay

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

func TestNewLineSource_EmptyInput_NoInput(t *testing.T) {
	for _, text := range []string{"", "\n", "\nline after blank\n"} {
		_, err := NewLineSource(strings.NewReader(text))
		assert.ErrorIs(t, err, dci.ErrNoInput, "input %q", text)
	}
}

func TestOpenLineSource_MissingFile_NoInput(t *testing.T) {
	_, err := OpenLineSource(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.ErrorIs(t, err, dci.ErrNoInput)
}

func TestLineSource_PeekAndNext(t *testing.T) {
	// GIVEN three lines with CRLF endings
	s, err := NewLineSource(strings.NewReader("a\r\nb\r\nc"))
	require.NoError(t, err)

	// THEN Peek is stable and Next walks the lines in order
	assert.Equal(t, "a", s.Peek())
	assert.Equal(t, "a", s.Peek())
	assert.Equal(t, 1, s.LineNumber())

	require.True(t, s.Next())
	assert.Equal(t, "b", s.Peek())
	require.True(t, s.Next())
	assert.Equal(t, "c", s.Peek())
	assert.Equal(t, 3, s.LineNumber())

	assert.False(t, s.Next())
	assert.False(t, s.HasNext())
	assert.NoError(t, s.Err())
}

func TestLineSource_EmptyLineEndsInput(t *testing.T) {
	// GIVEN a blank line between two records
	s, err := NewLineSource(strings.NewReader("first\n\nsecond\n"))
	require.NoError(t, err)

	// WHEN advancing past the first line
	assert.False(t, s.Next())

	// THEN the input is over for good
	assert.False(t, s.HasNext())
	assert.False(t, s.Next())
	assert.Equal(t, "", s.Peek())
}
