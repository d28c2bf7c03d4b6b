package lte

import "github.com/pdcch-replay/pdcch-replay/dci/bits"

// crc16Poly is gCRC16(D) = D^16 + D^12 + D^5 + 1 (36.212 §5.1.1).
const crc16Poly = 0x1021

// crc16 computes the LTE CRC over the first nbits of data, MSB first.
func crc16(data []byte, nbits int) (uint16, error) {
	r, err := bits.NewReader(data, nbits)
	if err != nil {
		return 0, err
	}
	var crc uint16
	for r.Remaining() > 0 {
		b, err := r.ReadBits(1)
		if err != nil {
			return 0, err
		}
		msb := crc>>15 ^ uint16(b)
		crc <<= 1
		if msb&1 == 1 {
			crc ^= crc16Poly
		}
	}
	return crc, nil
}

// attachCRC appends the RNTI-masked CRC to an nbits payload.
func attachCRC(payload []byte, nbits int, rnti uint16) ([]byte, int, error) {
	crc, err := crc16(payload, nbits)
	if err != nil {
		return nil, 0, err
	}
	total := nbits + 16
	out := make([]byte, bits.NofBytes(total))
	w, err := bits.NewWriter(out, total)
	if err != nil {
		return nil, 0, err
	}
	r, err := bits.NewReader(payload, nbits)
	if err != nil {
		return nil, 0, err
	}
	for r.Remaining() > 0 {
		n := min(r.Remaining(), 8)
		v, err := r.ReadBits(n)
		if err != nil {
			return nil, 0, err
		}
		if err := w.WriteBits(v, n); err != nil {
			return nil, 0, err
		}
	}
	if err := w.WriteBits(uint32(crc^rnti), 16); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
