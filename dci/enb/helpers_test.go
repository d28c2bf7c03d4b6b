package enb

import (
	"errors"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

type group struct {
	interval uint32
	cfi      uint32
	dl, ul   []dci.Message
	rejected []error
}

// sliceSource replays prepared groups.
type sliceSource struct {
	groups []group
	next   int
	cur    group
}

func (s *sliceSource) Ended() bool { return s.next >= len(s.groups) }
func (s *sliceSource) Advance() bool {
	if s.Ended() {
		return false
	}
	s.cur = s.groups[s.next]
	s.next++
	return true
}
func (s *sliceSource) Interval() uint32 { return s.cur.interval }
func (s *sliceSource) CFI() uint32 { return s.cur.cfi }
func (s *sliceSource) Downlink() []dci.Message { return s.cur.dl }
func (s *sliceSource) Uplink() []dci.Message { return s.cur.ul }
func (s *sliceSource) Rejected() []error { return s.cur.rejected }
func (s *sliceSource) Cell() dci.CellConfig { return dci.DefaultCell() }

var errMalformed = errors.New("malformed dci")

// stubCodec sizes every control region as 4*cfi CCEs and offers every
// aligned location as a candidate.
type stubCodec struct {
	renderFail uint16
}

func (c *stubCodec) Decode(_ dci.CellConfig, raw dci.Raw) (dci.Message, error) {
	return dci.Message{RNTI: raw.RNTI}, nil
}

func (c *stubCodec) Render(_ dci.CellConfig, _ *dci.Subframe, m dci.Message) (dci.ChannelBits, error) {
	if c.renderFail != 0 && m.RNTI == c.renderFail {
		return dci.ChannelBits{}, errMalformed
	}
	return dci.ChannelBits{Direction: m.Direction, Format: m.Format, RNTI: m.RNTI, Payload: []byte{0xa5}, NofBits: 8}, nil
}

func (c *stubCodec) Place(sf *dci.Subframe, loc dci.Location, b dci.ChannelBits) error {
	if err := sf.Reserve(loc); err != nil {
		return err
	}
	sf.Placements = append(sf.Placements, dci.Placement{Location: loc, Bits: b})
	return nil
}

func (c *stubCodec) CandidateLocations(_ uint16, sfIdx, nofCCE uint32) []dci.Location {
	var out []dci.Location
	for l := uint32(0); l <= 3; l++ {
		for n := uint32(0); n+(1<<l) <= nofCCE; n += 1 << l {
			// odd subframes only offer L=1
			if sfIdx%2 == 1 && l > 0 {
				continue
			}
			out = append(out, dci.Location{L: l, NCCE: n})
		}
	}
	return out
}

func (c *stubCodec) NofCCE(_ dci.CellConfig, cfi uint32) (uint32, error) {
	if cfi < 1 || cfi > dci.MaxCFI {
		return 0, errors.New("bad cfi")
	}
	return 4 * cfi, nil
}

func (c *stubCodec) Baseline(cell dci.CellConfig, sf *dci.Subframe) error {
	n, err := c.NofCCE(cell, sf.CFI)
	if err != nil {
		return err
	}
	sf.ResetControl(n)
	return nil
}

// recordingSink keeps a copy of every subframe it receives.
type recordingSink struct {
	subframes []dci.Subframe
	closed    bool
}

func (s *recordingSink) WriteSubframe(sf *dci.Subframe) error {
	s.subframes = append(s.subframes, *sf)
	return nil
}
func (s *recordingSink) Close() error { s.closed = true; return nil }

func dl(rnti uint16, l, ncce uint32) dci.Message {
	return dci.Message{Direction: dci.Downlink, RNTI: rnti, Format: dci.Format1A, Location: dci.Location{L: l, NCCE: ncce}}
}

func ul(rnti uint16, l, ncce uint32) dci.Message {
	return dci.Message{Direction: dci.Uplink, RNTI: rnti, Format: dci.Format0, Location: dci.Location{L: l, NCCE: ncce}}
}

func quietScheduler(cfg Config, src dci.Source, codec dci.Codec, sink dci.Sink) (*Scheduler, *logtest.Hook, error) {
	s, err := NewScheduler(cfg, src, codec, sink)
	if err != nil {
		return nil, nil, err
	}
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s.SetLogger(log)
	return s, hook, nil
}
