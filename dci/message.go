package dci

import (
	"fmt"
	"strings"
)

// MaxPayloadBits bounds the DCI payload length accepted from a trace.
const MaxPayloadBits = 128

// Direction tells whether a DCI schedules uplink (grant) or downlink (assignment) data.
type Direction uint8

const (
	// Uplink is a PUSCH grant (trace direction code 0).
	Uplink Direction = 0
	// Downlink is a PDSCH assignment (trace direction code 1).
	Downlink Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Uplink:
		return "uplink"
	case Downlink:
		return "downlink"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Format is the canonical DCI format enumeration.
type Format uint8

const (
	Format0 Format = iota
	Format1
	Format1A
	Format1B
	Format1C
	Format1D
	Format2
	Format2A
	Format2B
	FormatRAR
	nofFormats
)

var formatNames = [...]string{"0", "1", "1A", "1B", "1C", "1D", "2", "2A", "2B", "RAR"}

func (f Format) String() string {
	if f < nofFormats {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Valid reports whether f is a member of the enumeration.
func (f Format) Valid() bool { return f < nofFormats }

// MultiCodeword reports whether the format carries a second transport block.
func (f Format) MultiCodeword() bool {
	return f == Format2 || f == Format2A || f == Format2B
}

// ParseFormat accepts a format name as printed by String ("1A", "2", ...).
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(name, s) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown DCI format %q", s)
}

// Location is the position of a DCI in the control region.
// L is the log2 aggregation level (0..3 for 1, 2, 4 or 8 CCEs).
type Location struct {
	L    uint32
	NCCE uint32
}

// NofCCE returns the number of control channel elements the location spans.
func (l Location) NofCCE() uint32 { return 1 << l.L }

func (l Location) String() string {
	return fmt.Sprintf("L=%d,ncce=%d", l.L, l.NCCE)
}

// TransportBlock holds the per-codeword fields of a DCI.
type TransportBlock struct {
	Enabled bool
	MCS     uint32
	NDI     uint32
	RV      uint32
}

// AllocationType selects how Allocation is interpreted.
type AllocationType uint8

const (
	// AllocRIV is a contiguous allocation given by a resource indication value.
	AllocRIV AllocationType = iota
	// AllocType0 is a resource block group bitmap.
	AllocType0
)

// Allocation is the resource block assignment carried by a DCI.
type Allocation struct {
	Type        AllocationType
	RIV         uint32
	RBGBitmap   uint32
	Distributed bool
}

// Message is a canonical DCI, either a downlink assignment or an uplink grant.
type Message struct {
	Direction   Direction
	RNTI        uint16
	Format      Format
	Location    Location
	HARQ        uint32
	TB          [2]TransportBlock
	Alloc       Allocation
	TPC         uint32
	CQIRequest  bool
	CyclicShift uint32
	Hopping     bool
	TBSwap      bool
	Precoding   uint32

	// Inconsistencies lists the fields where the declared trace metadata
	// disagreed with the decoded payload. Empty for a clean record.
	Inconsistencies []Inconsistency
}

// InconsistencyCount returns the number of mismatching fields.
func (m *Message) InconsistencyCount() int { return len(m.Inconsistencies) }

// Consistent reports whether the message decoded without any mismatch.
func (m *Message) Consistent() bool { return len(m.Inconsistencies) == 0 }

func (m Message) String() string {
	return fmt.Sprintf("%s DCI %s rnti=0x%04x %s mcs=%d ndi=%d", m.Direction, m.Format, m.RNTI,
		m.Location, m.TB[0].MCS, m.TB[0].NDI)
}

// Raw is a packed DCI as captured, before decoding.
type Raw struct {
	Direction Direction
	Format    Format
	Location  Location
	RNTI      uint16
	Payload   []byte // MSB-first packed bits
	NofBits   int
}

// ChannelBits is a packed DCI ready for PDCCH encoding: payload bits followed by
// the RNTI-scrambled CRC.
type ChannelBits struct {
	Direction Direction
	Format    Format
	RNTI      uint16
	Payload   []byte
	NofBits   int
}
