package dci

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoInput is returned when a trace has no first record (missing, unreadable
// or empty file). The replay cannot start.
var ErrNoInput = errors.New("no input")

// ParseError reports a malformed trace line. The line is rejected and never
// contributes to a group.
type ParseError struct {
	Line  int    // 1-based line number, 0 if unknown
	Field string // field name, empty for field-count errors
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " in field %s", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeError reports that the codec could not unpack a payload.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding DCI format %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field names used in Inconsistency.
const (
	FieldRNTI        = "rnti"
	FieldFormat      = "format"
	FieldAggregation = "aggregation"
	FieldNCCE        = "ncce"
	FieldMCS         = "mcs"
	FieldNDI         = "ndi"
	FieldNDI1        = "ndi_1"
)

// Inconsistency is one field where the trace metadata disagrees with the
// decoded DCI. It is informational: the message is still produced.
type Inconsistency struct {
	Field    string
	Declared int64
	Decoded  int64
}

func (i Inconsistency) Error() string {
	return fmt.Sprintf("inconsistent %s: declared %d, decoded %d", i.Field, i.Declared, i.Decoded)
}

// InconsistencyError rejects a record whose mismatches hit a field configured as strict.
type InconsistencyError struct {
	Inconsistencies []Inconsistency
}

func (e *InconsistencyError) Error() string {
	parts := make([]string, len(e.Inconsistencies))
	for i, inc := range e.Inconsistencies {
		parts[i] = inc.Error()
	}
	return "strict check failed: " + strings.Join(parts, "; ")
}

// PlacementError reports that a DCI could not be rendered or placed on the
// PDCCH. It aborts the run.
type PlacementError struct {
	TTI      uint32
	RNTI     uint16
	Location Location
	Err      error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placing DCI rnti=0x%04x at %s in tti %d: %v", e.RNTI, e.Location, e.TTI, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }
