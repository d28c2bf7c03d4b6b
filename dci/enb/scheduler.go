package enb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/trace"
)

// Config holds the scheduler parameters.
type Config struct {
	Frames     int    `yaml:"frames" env:"FRAMES"`           // frame budget, negative for unlimited
	DefaultCFI uint32 `yaml:"default_cfi" env:"DEFAULT_CFI"` // used until the first group is injected
	RNTI       uint16 `yaml:"rnti" env:"RNTI"`               // UE whose placements are checked against its search space
	// DrainLast keeps running after the source has ended until the group it
	// last loaded is transmitted. Off, the run stops once Ended reports true
	// after a matched subframe, and that last group is never injected.
	DrainLast bool `yaml:"drain_last" env:"DRAIN_LAST"`
}

// DefaultConfig returns an unlimited run with CFI 2 and UE RNTI 0x1234.
func DefaultConfig() Config {
	return Config{Frames: -1, DefaultCFI: 2, RNTI: 0x1234}
}

// Validate checks the scheduler parameters.
func (c Config) Validate() error {
	if c.Frames == 0 {
		return errors.New("frames must be positive or negative for unlimited, got 0")
	}
	if c.DefaultCFI < 1 || c.DefaultCFI > dci.MaxCFI {
		return fmt.Errorf("default_cfi must be in 1..%d, got %d", dci.MaxCFI, c.DefaultCFI)
	}
	return nil
}

// Stats counts what a run transmitted.
type Stats struct {
	Subframes      int
	Frames         int // completed frames
	Matched        int // subframes whose group was injected
	DownlinkPlaced int
	UplinkPlaced   int
	Verified       int // placements of Config.RNTI inside its search space
	Unverified     int // placements of Config.RNTI outside its search space
	Inconsistent   int // placed messages carrying inconsistencies
	Rejected       int // trace lines dropped by the source
}

// Scheduler walks the subframe timeline and injects each replayed group in
// the subframe whose interval id matches it.
type Scheduler struct {
	cfg   Config
	src   dci.Source
	codec dci.Codec
	sink  dci.Sink
	cache *SearchSpaceCache
	trace *trace.ScheduleTrace
	log   logrus.FieldLogger
}

// NewScheduler validates cfg and builds the search space cache for cfg.RNTI.
func NewScheduler(cfg Config, src dci.Source, codec dci.Codec, sink dci.Sink) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache, err := NewSearchSpaceCache(codec, src.Cell(), cfg.RNTI)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		cfg:   cfg,
		src:   src,
		codec: codec,
		sink:  sink,
		cache: cache,
		log:   logrus.StandardLogger(),
	}, nil
}

// SetLogger replaces the standard logger.
func (s *Scheduler) SetLogger(log logrus.FieldLogger) { s.log = log }

// SetTrace records every subframe and placement into st when it is enabled.
func (s *Scheduler) SetTrace(st *trace.ScheduleTrace) { s.trace = st }

// SearchSpace returns the cache built for Config.RNTI.
func (s *Scheduler) SearchSpace() *SearchSpaceCache { return s.cache }

// Run primes the source and transmits subframes until the source has ended
// (see Config.DrainLast), the frame budget is spent or ctx is cancelled.
// Cancellation is checked once per subframe and is not an error. It fails
// with dci.ErrNoInput when the source yields no group, and with
// *dci.PlacementError when a DCI cannot be rendered or placed.
func (s *Scheduler) Run(ctx context.Context) (Stats, error) {
	var st Stats
	primed := s.src.Advance()
	st.Rejected += len(s.src.Rejected())
	if !primed {
		return st, fmt.Errorf("priming replay: %w", dci.ErrNoInput)
	}

	cell := s.src.Cell()
	sfn := (s.src.Interval() / dci.SubframesPerFrame) % dci.FrameCycle
	sfIdx := uint32(0)
	cfi := s.cfg.DefaultCFI
	done := false

	s.log.Infof("starting at sfn=%d, first group at tti %d", sfn, s.src.Interval())

	for !done {
		if s.cfg.Frames > 0 && st.Frames >= s.cfg.Frames {
			s.log.Infof("frame budget of %d reached", s.cfg.Frames)
			break
		}
		if err := ctx.Err(); err != nil {
			s.log.Infof("stopping at sfn=%d sf=%d: %v", sfn, sfIdx, err)
			break
		}

		tti := dci.Interval(sfn, sfIdx)
		matched := tti == s.src.Interval()
		if matched {
			cfi = s.src.CFI()
		}

		sf := dci.NewSubframe(sfn, sfIdx, cfi)
		if err := s.codec.Baseline(cell, sf); err != nil {
			return st, fmt.Errorf("building subframe tti %d: %w", tti, err)
		}

		if matched {
			st.Matched++
			if err := s.inject(cell, sf, s.src.Downlink(), &st.DownlinkPlaced, &st); err != nil {
				return st, err
			}
			if err := s.inject(cell, sf, s.src.Uplink(), &st.UplinkPlaced, &st); err != nil {
				return st, err
			}
		}

		if err := s.sink.WriteSubframe(sf); err != nil {
			return st, fmt.Errorf("writing subframe tti %d: %w", tti, err)
		}
		st.Subframes++
		if s.trace.Enabled() {
			s.trace.RecordSubframe(trace.SubframeRecord{
				TTI: tti, CFI: cfi, Matched: matched, NofCCE: sf.NofCCE(), UsedCCE: sf.UsedCCE(),
			})
		}

		if matched {
			advanced := s.src.Advance()
			st.Rejected += len(s.src.Rejected())
			if s.cfg.DrainLast {
				done = !advanced
			} else {
				done = s.src.Ended()
			}
		}

		sfIdx++
		if sfIdx == dci.SubframesPerFrame {
			sfIdx = 0
			sfn = (sfn + 1) % dci.FrameCycle
			st.Frames++
		}
	}
	return st, nil
}

func (s *Scheduler) inject(cell dci.CellConfig, sf *dci.Subframe, msgs []dci.Message, placed *int, st *Stats) error {
	for i := range msgs {
		m := &msgs[i]
		cb, err := s.codec.Render(cell, sf, *m)
		if err != nil {
			return &dci.PlacementError{TTI: sf.TTI(), RNTI: m.RNTI, Location: m.Location, Err: err}
		}
		if err := s.codec.Place(sf, m.Location, cb); err != nil {
			return &dci.PlacementError{TTI: sf.TTI(), RNTI: m.RNTI, Location: m.Location, Err: err}
		}
		*placed++
		if !m.Consistent() {
			st.Inconsistent++
		}

		rec := trace.PlacementRecord{
			TTI: sf.TTI(), RNTI: m.RNTI, Downlink: m.Direction == dci.Downlink,
			Format: m.Format.String(), Aggregation: m.Location.L, NCCE: m.Location.NCCE,
		}
		if m.RNTI == s.cache.RNTI() {
			rec.Checked = true
			rec.Verified = s.cache.Contains(sf.CFI, sf.Index, m.Location)
			if rec.Verified {
				st.Verified++
			} else {
				st.Unverified++
				s.log.WithFields(logrus.Fields{"tti": sf.TTI(), "rnti": m.RNTI}).
					Warnf("%s outside the UE search space for cfi %d", m.Location, sf.CFI)
			}
		}
		if s.trace.Enabled() {
			s.trace.RecordPlacement(rec)
		}
	}
	return nil
}

// Print writes the run statistics in a fixed human-readable layout.
func (st Stats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Replay Metrics ===")
	fmt.Fprintf(w, "Subframes            : %d\n", st.Subframes)
	fmt.Fprintf(w, "Frames               : %d\n", st.Frames)
	fmt.Fprintf(w, "Matched Intervals    : %d\n", st.Matched)
	fmt.Fprintf(w, "Downlink DCI Placed  : %d\n", st.DownlinkPlaced)
	fmt.Fprintf(w, "Uplink DCI Placed    : %d\n", st.UplinkPlaced)
	fmt.Fprintf(w, "Inconsistent DCI     : %d\n", st.Inconsistent)
	fmt.Fprintf(w, "Rejected Lines       : %d\n", st.Rejected)
	if st.Verified+st.Unverified > 0 {
		fmt.Fprintf(w, "Search Space Hits    : %d/%d\n", st.Verified, st.Verified+st.Unverified)
	}
}
