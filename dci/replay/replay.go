package replay

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// Stats counts what the replay has consumed so far.
type Stats struct {
	Lines        int // lines consumed
	Records      int // lines that parsed and joined a group
	Rejected     int // lines dropped (parse, decode or strict-check failures)
	Groups       int
	Downlink     int
	Uplink       int
	Inconsistent int // messages carrying at least one inconsistency
}

// FileReplay regroups a flat per-message trace into one group per interval.
// It looks exactly one line ahead: the first record of the next interval
// stays buffered in the line source until the following Advance.
type FileReplay struct {
	src *LineSource
	dec *Decoder
	log logrus.FieldLogger

	interval uint32
	cfi      uint32
	downlink []dci.Message
	uplink   []dci.Message
	rejected []error

	stats Stats
}

var _ dci.Source = (*FileReplay)(nil)

// NewFileReplay groups the records of src, decoding them with dec.
func NewFileReplay(src *LineSource, dec *Decoder) *FileReplay {
	return &FileReplay{src: src, dec: dec, log: dec.logger()}
}

// OpenFileReplay opens a trace file. It fails with dci.ErrNoInput when the
// trace has no first line.
func OpenFileReplay(path string, dec *Decoder) (*FileReplay, error) {
	src, err := OpenLineSource(path)
	if err != nil {
		return nil, err
	}
	return NewFileReplay(src, dec), nil
}

// Ended reports whether the line source has no buffered line.
func (f *FileReplay) Ended() bool { return !f.src.HasNext() }

// Advance builds the group of the next interval present in the trace.
func (f *FileReplay) Advance() bool {
	var rejected []error
	started := false

	for f.src.HasNext() {
		lineNo := f.src.LineNumber()
		rec, err := ParseRecord(f.src.Peek())
		if err != nil {
			rejected = append(rejected, f.reject(lineNo, err))
			f.consume()
			continue
		}

		if !started {
			started = true
			f.interval = rec.Interval()
			f.cfi = rec.CFI
			f.downlink = f.downlink[:0]
			f.uplink = f.uplink[:0]
		} else if rec.Interval() != f.interval {
			break
		}

		msg, err := f.dec.Decode(rec)
		if err != nil {
			rejected = append(rejected, f.reject(lineNo, err))
			f.consume()
			continue
		}
		f.stats.Records++
		if !msg.Consistent() {
			f.stats.Inconsistent++
		}
		if rec.IsDownlink() {
			f.downlink = append(f.downlink, msg)
			f.stats.Downlink++
		} else {
			f.uplink = append(f.uplink, msg)
			f.stats.Uplink++
		}
		f.consume()
	}

	if err := f.src.Err(); err != nil {
		f.log.Errorf("reading trace after line %d: %v", f.src.LineNumber(), err)
	}
	f.rejected = rejected
	if !started {
		return false
	}
	f.stats.Groups++
	f.log.Debugf("[tti %05d] grouped %d downlink, %d uplink DCI (cfi=%d)",
		f.interval, len(f.downlink), len(f.uplink), f.cfi)
	return true
}

func (f *FileReplay) consume() {
	f.stats.Lines++
	f.src.Next()
}

func (f *FileReplay) reject(lineNo int, err error) error {
	f.stats.Rejected++
	var pe *dci.ParseError
	if errors.As(err, &pe) && pe.Line == 0 {
		pe.Line = lineNo
	}
	f.log.WithField("line", lineNo).Warnf("rejected trace line: %v", err)
	return err
}

// Interval returns the interval id of the current group.
func (f *FileReplay) Interval() uint32 { return f.interval }

// CFI returns the CFI declared by the first record of the current group.
func (f *FileReplay) CFI() uint32 { return f.cfi }

// Downlink returns the current group's downlink assignments in trace order.
func (f *FileReplay) Downlink() []dci.Message { return f.downlink }

// Uplink returns the current group's uplink grants in trace order.
func (f *FileReplay) Uplink() []dci.Message { return f.uplink }

// Rejected returns errors for the lines dropped by the last Advance, including
// one that produced no group.
func (f *FileReplay) Rejected() []error { return f.rejected }

// Cell returns the cell configuration used for decoding.
func (f *FileReplay) Cell() dci.CellConfig { return f.dec.Cell }

// Stats returns the running counters.
func (f *FileReplay) Stats() Stats { return f.stats }

// Close releases the trace file.
func (f *FileReplay) Close() error { return f.src.Close() }
