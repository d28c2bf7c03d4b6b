package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// echoCodec decodes every payload into a message that mirrors the raw
// metadata, with MCS and NDI of zero. remap rewrites decoded RNTIs and
// failRNTI makes Decode fail.
type echoCodec struct {
	remap    map[uint16]uint16
	failRNTI uint16
}

var errDecode = errors.New("crc mismatch")

func (c *echoCodec) Decode(_ dci.CellConfig, raw dci.Raw) (dci.Message, error) {
	if c.failRNTI != 0 && raw.RNTI == c.failRNTI {
		return dci.Message{}, errDecode
	}
	rnti := raw.RNTI
	if r, ok := c.remap[rnti]; ok {
		rnti = r
	}
	return dci.Message{
		Direction: raw.Direction,
		RNTI:      rnti,
		Format:    raw.Format,
		Location:  raw.Location,
		TB:        [2]dci.TransportBlock{{Enabled: true}},
	}, nil
}

func (c *echoCodec) Render(dci.CellConfig, *dci.Subframe, dci.Message) (dci.ChannelBits, error) {
	return dci.ChannelBits{}, nil
}
func (c *echoCodec) Place(*dci.Subframe, dci.Location, dci.ChannelBits) error { return nil }
func (c *echoCodec) CandidateLocations(uint16, uint32, uint32) []dci.Location {
	return nil
}
func (c *echoCodec) NofCCE(dci.CellConfig, uint32) (uint32, error) { return 12, nil }
func (c *echoCodec) Baseline(dci.CellConfig, *dci.Subframe) error { return nil }

// traceLine builds a 20-column trace line with a 25-bit payload, MCS 0 and
// NDI 0. Downlink lines use format code 3 (1A), uplink code 0.
func traceLine(sfn, sfIdx uint32, rnti uint16, dir dci.Direction, cfi uint32) string {
	code := 0
	if dir == dci.Downlink {
		code = 3
	}
	return fmt.Sprintf("%d.250\t%d\t%d\t%d\t%d\t0\t5\t0\t0\t-1\t%d\t0\t-1\t0\t8\t2\t%d\t0\t25\tdeadbee8",
		sfn, sfn, sfIdx, rnti, dir, code, cfi)
}

func trace(lines ...string) string { return strings.Join(lines, "\n") + "\n" }

func quietDecoder(codec dci.Codec) (*Decoder, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	dec := NewDecoder(dci.DefaultCell(), codec)
	dec.Log = log
	return dec, hook
}

func replayOf(text string, codec dci.Codec) (*FileReplay, *logtest.Hook, error) {
	dec, hook := quietDecoder(codec)
	src, err := NewLineSource(strings.NewReader(text))
	if err != nil {
		return nil, hook, err
	}
	return NewFileReplay(src, dec), hook, nil
}
