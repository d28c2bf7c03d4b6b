package lte

import (
	"errors"
	"fmt"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/bits"
)

// ErrUnsupportedFormat is returned for formats the reference codec does not implement.
var ErrUnsupportedFormat = errors.New("unsupported DCI format")

// 36.212 Table 5.3.3.1.2-1: payload sizes that must be padded by one bit.
var ambiguousSizes = map[int]bool{12: true, 14: true, 16: true, 20: true, 24: true, 26: true, 32: true, 40: true, 44: true, 56: true}

// field is one DCI field with symmetric accessors used by pack and unpack.
type field struct {
	name  string
	width int
	get   func(m *dci.Message) uint32
	set   func(m *dci.Message, v uint32) error
}

func flag(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// disabled reports whether codeword cw is switched off. Only the two-codeword
// formats can disable a transport block; it is signalled as MCS 0 with RV 1.
func disabled(m *dci.Message, cw int) bool {
	return m.Format.MultiCodeword() && !m.TB[cw].Enabled
}

func mcsField(cw int) field {
	return field{fmt.Sprintf("tb%d.mcs", cw), 5,
		func(m *dci.Message) uint32 {
			if disabled(m, cw) {
				return 0
			}
			return m.TB[cw].MCS
		},
		func(m *dci.Message, v uint32) error { m.TB[cw].MCS = v; return nil }}
}

func ndiField(cw int) field {
	return field{fmt.Sprintf("tb%d.ndi", cw), 1,
		func(m *dci.Message) uint32 { return m.TB[cw].NDI },
		func(m *dci.Message, v uint32) error { m.TB[cw].NDI = v; return nil }}
}

func rvField(cw int) field {
	return field{fmt.Sprintf("tb%d.rv", cw), 2,
		func(m *dci.Message) uint32 {
			if disabled(m, cw) {
				return 1
			}
			return m.TB[cw].RV
		},
		func(m *dci.Message, v uint32) error { m.TB[cw].RV = v; return nil }}
}

var (
	harqField = field{"harq", 3,
		func(m *dci.Message) uint32 { return m.HARQ },
		func(m *dci.Message, v uint32) error { m.HARQ = v; return nil }}
	tpcField = field{"tpc", 2,
		func(m *dci.Message) uint32 { return m.TPC },
		func(m *dci.Message, v uint32) error { m.TPC = v; return nil }}
)

func rivField(nofPRB uint32) field {
	return field{"riv", rivBits(nofPRB),
		func(m *dci.Message) uint32 { return m.Alloc.RIV },
		func(m *dci.Message, v uint32) error {
			m.Alloc.Type = dci.AllocRIV
			m.Alloc.RIV = v
			return nil
		}}
}

func type0Fields(nofPRB uint32) []field {
	out := make([]field, 0, 2)
	if allocHeaderBits(nofPRB) > 0 {
		out = append(out, field{"ra_header", 1,
			func(m *dci.Message) uint32 { return 0 },
			func(m *dci.Message, v uint32) error {
				if v != 0 {
					return errors.New("resource allocation type 1 not supported")
				}
				return nil
			}})
	}
	return append(out, field{"rbg_bitmap", rbgBits(nofPRB),
		func(m *dci.Message) uint32 { return m.Alloc.RBGBitmap },
		func(m *dci.Message, v uint32) error {
			m.Alloc.Type = dci.AllocType0
			m.Alloc.RBGBitmap = v
			return nil
		}})
}

// flag0or1A differentiates formats 0 and 1A, which share one payload size.
var flag0or1A = field{"format_flag", 1,
	func(m *dci.Message) uint32 { return flag(m.Format == dci.Format1A) },
	func(m *dci.Message, v uint32) error {
		if v == 1 {
			m.Format = dci.Format1A
		} else {
			m.Format = dci.Format0
		}
		return nil
	}}

func layout(cell dci.CellConfig, f dci.Format) ([]field, error) {
	if cell.FrameType != dci.FDD {
		return nil, fmt.Errorf("%w: format %s for frame type %s", ErrUnsupportedFormat, f, cell.FrameType)
	}
	n := cell.NofPRB
	switch f {
	case dci.Format0:
		return []field{
			flag0or1A,
			{"hopping", 1,
				func(m *dci.Message) uint32 { return flag(m.Hopping) },
				func(m *dci.Message, v uint32) error { m.Hopping = v == 1; return nil }},
			rivField(n),
			mcsField(0),
			ndiField(0),
			tpcField,
			{"cyclic_shift", 3,
				func(m *dci.Message) uint32 { return m.CyclicShift },
				func(m *dci.Message, v uint32) error { m.CyclicShift = v; return nil }},
			{"cqi_request", 1,
				func(m *dci.Message) uint32 { return flag(m.CQIRequest) },
				func(m *dci.Message, v uint32) error { m.CQIRequest = v == 1; return nil }},
		}, nil
	case dci.Format1A:
		return []field{
			flag0or1A,
			{"distributed", 1,
				func(m *dci.Message) uint32 { return flag(m.Alloc.Distributed) },
				func(m *dci.Message, v uint32) error { m.Alloc.Distributed = v == 1; return nil }},
			rivField(n),
			mcsField(0),
			harqField,
			ndiField(0),
			rvField(0),
			tpcField,
		}, nil
	case dci.Format1:
		return append(type0Fields(n), mcsField(0), harqField, ndiField(0), rvField(0), tpcField), nil
	case dci.Format2, dci.Format2A:
		fields := append(type0Fields(n), tpcField, harqField,
			field{"tb_swap", 1,
				func(m *dci.Message) uint32 { return flag(m.TBSwap) },
				func(m *dci.Message, v uint32) error { m.TBSwap = v == 1; return nil }},
			mcsField(0), ndiField(0), rvField(0),
			mcsField(1), ndiField(1), rvField(1))
		if w := precodingBits(f, cell.NofPorts); w > 0 {
			fields = append(fields, field{"precoding", w,
				func(m *dci.Message) uint32 { return m.Precoding },
				func(m *dci.Message, v uint32) error { m.Precoding = v; return nil }})
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// 36.212 Tables 5.3.3.1.5-3 and 5.3.3.1.5A-1.
func precodingBits(f dci.Format, ports uint32) int {
	switch {
	case f == dci.Format2 && ports == 2:
		return 3
	case f == dci.Format2 && ports == 4:
		return 6
	case f == dci.Format2A && ports == 4:
		return 2
	default:
		return 0
	}
}

func width(fields []field) int {
	n := 0
	for _, f := range fields {
		n += f.width
	}
	return n
}

// size0or1A is the common payload size of formats 0 and 1A.
func size0or1A(nofPRB uint32) int {
	s := 15 + rivBits(nofPRB)
	if ambiguousSizes[s] {
		s++
	}
	return s
}

// PayloadSize returns the padded payload width of format f in cell.
func PayloadSize(cell dci.CellConfig, f dci.Format) (int, error) {
	fields, err := layout(cell, f)
	if err != nil {
		return 0, err
	}
	if f == dci.Format0 || f == dci.Format1A {
		return size0or1A(cell.NofPRB), nil
	}
	s := width(fields)
	for ambiguousSizes[s] || (f == dci.Format1 && s == size0or1A(cell.NofPRB)) {
		s++
	}
	return s, nil
}

func pack(cell dci.CellConfig, msg *dci.Message) ([]byte, int, error) {
	fields, err := layout(cell, msg.Format)
	if err != nil {
		return nil, 0, err
	}
	size, err := PayloadSize(cell, msg.Format)
	if err != nil {
		return nil, 0, err
	}
	buf := make([]byte, bits.NofBytes(size))
	w, err := bits.NewWriter(buf, size)
	if err != nil {
		return nil, 0, err
	}
	for _, f := range fields {
		v := f.get(msg)
		if f.width < 32 && v>>uint(f.width) != 0 {
			return nil, 0, fmt.Errorf("field %s value %d exceeds %d bits", f.name, v, f.width)
		}
		if err := w.WriteBits(v, f.width); err != nil {
			return nil, 0, fmt.Errorf("packing %s: %w", f.name, err)
		}
	}
	// remaining bits are zero padding
	return buf, size, nil
}

func unpack(cell dci.CellConfig, raw dci.Raw, msg *dci.Message) error {
	fields, err := layout(cell, raw.Format)
	if err != nil {
		return err
	}
	size, err := PayloadSize(cell, raw.Format)
	if err != nil {
		return err
	}
	if raw.NofBits != size {
		return fmt.Errorf("payload of %d bits, format %s expects %d for %d PRB", raw.NofBits, raw.Format, size, cell.NofPRB)
	}
	r, err := bits.NewReader(raw.Payload, raw.NofBits)
	if err != nil {
		return err
	}
	for _, f := range fields {
		v, err := r.ReadBits(f.width)
		if err != nil {
			return fmt.Errorf("unpacking %s: %w", f.name, err)
		}
		if err := f.set(msg, v); err != nil {
			return err
		}
	}
	return nil
}
