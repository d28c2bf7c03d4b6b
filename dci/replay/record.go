package replay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/bits"
)

// Record is one captured DCI line.
type Record struct {
	Timestamp     float64
	SFN           uint32
	SubframeIndex uint32
	RNTI          uint16
	Direction     dci.Direction
	MCS           uint32
	NofPRB        uint32
	TBSSum        uint32
	TBS0          int32
	TBS1          int32
	FormatCode    uint32 // downlink codes are the canonical format + 1
	NDI           uint32
	NDI1          int32 // negative when the second codeword is absent
	HARQ          uint32
	NCCE          uint32
	Aggregation   uint32 // log2 aggregation level
	CFI           uint32
	HistValue     uint32
	PayloadBits   int
	PayloadHex    string

	// Payload holds the decoded bits of PayloadHex, MSB first.
	Payload []byte
}

// Trace column names, in file order.
var recordColumns = []string{
	"timestamp", "sfn", "sf_idx", "rnti", "direction", "mcs_idx", "L_prb",
	"mcs_tbs_sum", "mcs0_tbs", "mcs1_tbs", "format", "ndi", "ndi_1",
	"harq_process", "ncce", "aggregation", "cfi", "histval", "msg_len", "payload",
}

// Interval returns the record's interval id.
func (r Record) Interval() uint32 { return dci.Interval(r.SFN, r.SubframeIndex) }

// IsDownlink reports whether the record is a downlink assignment.
func (r Record) IsDownlink() bool { return r.Direction == dci.Downlink }

// Format maps the trace format code to the canonical enumeration. Downlink
// codes are stored one above the canonical value.
func (r Record) Format() (dci.Format, error) {
	code := r.FormatCode
	if r.IsDownlink() {
		if code == 0 {
			return 0, errors.New("downlink format code 0 has no canonical format")
		}
		code--
	}
	f := dci.Format(code)
	if !f.Valid() {
		return 0, fmt.Errorf("format code %d out of range", r.FormatCode)
	}
	return f, nil
}

// Location returns the declared PDCCH location.
func (r Record) Location() dci.Location {
	return dci.Location{L: r.Aggregation, NCCE: r.NCCE}
}

// fieldParser accumulates the first conversion error while walking the columns.
type fieldParser struct {
	tokens []string
	idx    int
	err    *dci.ParseError
}

func (p *fieldParser) next() (string, string) {
	i := p.idx
	p.idx++
	return recordColumns[i], strings.TrimSpace(p.tokens[i])
}

func (p *fieldParser) fail(field string, err error) {
	if p.err == nil {
		p.err = &dci.ParseError{Field: field, Err: err}
	}
}

func (p *fieldParser) parseUint(bitSize int) uint64 {
	name, tok := p.next()
	v, err := strconv.ParseUint(tok, 10, bitSize)
	if err != nil {
		p.fail(name, err)
	}
	return v
}

func (p *fieldParser) parseInt32() int32 {
	name, tok := p.next()
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		p.fail(name, err)
	}
	return int32(v)
}

func (p *fieldParser) parseFloat() float64 {
	name, tok := p.next()
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		p.fail(name, err)
	}
	return v
}

// ParseRecord parses one tab-separated trace line of exactly 20 fields and
// decodes its hex payload. Errors are *dci.ParseError; a payload shorter than
// its declared bit length wraps bits.ErrInsufficientInput.
func ParseRecord(line string) (Record, error) {
	tokens := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(tokens) != len(recordColumns) {
		return Record{}, &dci.ParseError{
			Err: fmt.Errorf("got %d fields, expected %d", len(tokens), len(recordColumns)),
		}
	}

	p := &fieldParser{tokens: tokens}
	rec := Record{
		Timestamp:     p.parseFloat(),
		SFN:           uint32(p.parseUint(32)),
		SubframeIndex: uint32(p.parseUint(32)),
		RNTI:          uint16(p.parseUint(16)),
		Direction:     dci.Direction(p.parseUint(8)),
		MCS:           uint32(p.parseUint(32)),
		NofPRB:        uint32(p.parseUint(32)),
		TBSSum:        uint32(p.parseUint(32)),
		TBS0:          p.parseInt32(),
		TBS1:          p.parseInt32(),
		FormatCode:    uint32(p.parseUint(32)),
		NDI:           uint32(p.parseUint(32)),
		NDI1:          p.parseInt32(),
		HARQ:          uint32(p.parseUint(32)),
		NCCE:          uint32(p.parseUint(32)),
		Aggregation:   uint32(p.parseUint(32)),
		CFI:           uint32(p.parseUint(32)),
		HistValue:     uint32(p.parseUint(32)),
		PayloadBits:   int(p.parseUint(16)),
	}
	_, rec.PayloadHex = p.next()
	if p.err != nil {
		return Record{}, p.err
	}

	if err := rec.validate(); err != nil {
		return Record{}, err
	}

	rec.Payload = make([]byte, bits.NofBytes(rec.PayloadBits))
	if err := bits.DecodeHex(rec.PayloadHex, rec.PayloadBits, rec.Payload); err != nil {
		return Record{}, &dci.ParseError{Field: "payload", Err: err}
	}
	return rec, nil
}

func (r Record) validate() error {
	switch {
	case r.SubframeIndex >= dci.SubframesPerFrame:
		return &dci.ParseError{Field: "sf_idx", Err: fmt.Errorf("subframe index %d out of range", r.SubframeIndex)}
	case r.Direction != dci.Uplink && r.Direction != dci.Downlink:
		return &dci.ParseError{Field: "direction", Err: fmt.Errorf("direction %d is neither 0 nor 1", r.Direction)}
	case r.CFI < 1 || r.CFI > dci.MaxCFI:
		return &dci.ParseError{Field: "cfi", Err: fmt.Errorf("cfi %d out of range 1..%d", r.CFI, dci.MaxCFI)}
	case r.Aggregation > 3:
		return &dci.ParseError{Field: "aggregation", Err: fmt.Errorf("aggregation level index %d out of range 0..3", r.Aggregation)}
	case r.PayloadBits == 0 || r.PayloadBits > dci.MaxPayloadBits:
		return &dci.ParseError{Field: "msg_len", Err: fmt.Errorf("payload length %d out of range 1..%d", r.PayloadBits, dci.MaxPayloadBits)}
	}
	if _, err := r.Format(); err != nil {
		return &dci.ParseError{Field: "format", Err: err}
	}
	return nil
}
