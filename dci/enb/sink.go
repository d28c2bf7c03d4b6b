package enb

import (
	"github.com/sirupsen/logrus"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// DiscardSink drops every subframe.
type DiscardSink struct{}

func (DiscardSink) WriteSubframe(*dci.Subframe) error { return nil }
func (DiscardSink) Close() error { return nil }

// LogSink logs a one-line description of every subframe at debug level and
// of subframes carrying DCIs at info level.
type LogSink struct {
	Log logrus.FieldLogger
}

// NewLogSink logs to the standard logger.
func NewLogSink() *LogSink { return &LogSink{Log: logrus.StandardLogger()} }

func (s *LogSink) WriteSubframe(sf *dci.Subframe) error {
	log := s.Log.WithFields(logrus.Fields{"tti": sf.TTI(), "cfi": sf.CFI})
	if len(sf.Placements) == 0 {
		log.Debugf("sfn=%d sf=%d empty control region (%d CCE)", sf.SFN, sf.Index, sf.NofCCE())
		return nil
	}
	log.Infof("sfn=%d sf=%d %d DCI, %d/%d CCE used", sf.SFN, sf.Index, len(sf.Placements), sf.UsedCCE(), sf.NofCCE())
	for _, p := range sf.Placements {
		log.Debugf("  %s %s rnti=0x%04x %s %d bits", p.Bits.Direction, p.Bits.Format, p.Bits.RNTI, p.Location, p.Bits.NofBits)
	}
	return nil
}

func (s *LogSink) Close() error { return nil }
