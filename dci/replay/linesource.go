package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

const maxLineBytes = 1 << 20

// LineSource reads a trace one line at a time and always holds the next
// unconsumed line in its buffer. An empty line ends the input.
type LineSource struct {
	closer  io.Closer
	scanner *bufio.Scanner
	line    string
	lineNo  int
	has     bool
	done    bool
	err     error
}

// OpenLineSource opens path and buffers its first line. It returns
// dci.ErrNoInput (wrapped) when the file cannot be read or its first line is empty.
func OpenLineSource(path string) (*LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace %s: %w: %v", path, dci.ErrNoInput, err)
	}
	s, err := NewLineSource(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	s.closer = f
	return s, nil
}

// NewLineSource buffers the first line of r.
func NewLineSource(r io.Reader) (*LineSource, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	s := &LineSource{scanner: sc}
	if !s.Next() {
		if s.err != nil {
			return nil, fmt.Errorf("%w: %v", dci.ErrNoInput, s.err)
		}
		return nil, dci.ErrNoInput
	}
	return s, nil
}

// HasNext reports whether a line is buffered.
func (s *LineSource) HasNext() bool { return s.has }

// Peek returns the buffered line without consuming it.
func (s *LineSource) Peek() string { return s.line }

// LineNumber returns the 1-based number of the buffered line.
func (s *LineSource) LineNumber() int { return s.lineNo }

// Next consumes the buffered line and buffers the following one.
func (s *LineSource) Next() bool {
	s.has = false
	s.line = ""
	if s.done || s.err != nil || !s.scanner.Scan() {
		if s.err == nil {
			s.err = s.scanner.Err()
		}
		return false
	}
	s.lineNo++
	s.line = strings.TrimSuffix(s.scanner.Text(), "\r")
	s.has = s.line != ""
	s.done = !s.has
	return s.has
}

// Err returns the first read error, if any. Reaching the end of input is not an error.
func (s *LineSource) Err() error { return s.err }

// Close releases the underlying file.
func (s *LineSource) Close() error {
	s.has = false
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
