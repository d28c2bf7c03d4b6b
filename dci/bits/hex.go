package bits

import (
	"encoding/hex"
	"fmt"
)

// DecodeHex reads nbits from a big-endian hex string into dst. Whole bytes are
// taken from the first 2*NofBytes(nbits) characters; when nbits is not a
// multiple of 8 only the top nbits%8 bits of the last byte are kept and the
// padding is cleared. Extra characters are ignored.
//
// On any error dst[:NofBytes(nbits)] is left zeroed.
func DecodeHex(s string, nbits int, dst []byte) error {
	nbytes := NofBytes(nbits)
	if nbits < 0 || len(dst) < nbytes {
		return fmt.Errorf("decoding %d bits into %d bytes: %w", nbits, len(dst), ErrBufferTooSmall)
	}
	w, err := NewWriter(dst, nbits)
	if err != nil {
		return err
	}
	if len(s) < 2*nbytes {
		return fmt.Errorf("hex string of %d chars for %d bits: %w", len(s), nbits, ErrInsufficientInput)
	}
	raw, err := hex.DecodeString(s[:2*nbytes])
	if err != nil {
		return fmt.Errorf("invalid hex payload: %w", err)
	}

	full := nbits / 8
	for _, b := range raw[:full] {
		if err := w.WriteBits(uint32(b), 8); err != nil {
			return err
		}
	}
	if tail := nbits % 8; tail != 0 {
		if err := w.WriteBits(uint32(raw[full]>>(8-tail)), tail); err != nil {
			clear(dst[:nbytes])
			return err
		}
	}
	return nil
}

// EncodeHex writes nbits of src as lowercase hex into dst followed by a NUL
// byte and returns the number of hex characters written. dst must hold at
// least 2*NofBytes(nbits)+1 bytes; otherwise ErrBufferTooSmall is returned
// and the contents of dst are unspecified.
func EncodeHex(src []byte, nbits int, dst []byte) (int, error) {
	nbytes := NofBytes(nbits)
	if nbits < 0 || len(dst) < 2*nbytes+1 {
		return 0, fmt.Errorf("encoding %d bits needs %d bytes, have %d: %w", nbits, 2*nbytes+1, len(dst), ErrBufferTooSmall)
	}
	r, err := NewReader(src, nbits)
	if err != nil {
		return 0, err
	}

	packed := make([]byte, nbytes)
	for i := 0; i < nbits/8; i++ {
		v, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		packed[i] = byte(v)
	}
	if tail := nbits % 8; tail != 0 {
		v, err := r.ReadBits(tail)
		if err != nil {
			return 0, err
		}
		packed[nbytes-1] = byte(v << (8 - tail))
	}

	n := hex.Encode(dst, packed)
	dst[n] = 0
	return n, nil
}

// HexString is EncodeHex into a freshly sized buffer.
func HexString(src []byte, nbits int) (string, error) {
	if nbits < 0 {
		return "", fmt.Errorf("negative bit length %d: %w", nbits, ErrBufferTooSmall)
	}
	dst := make([]byte, 2*NofBytes(nbits)+1)
	n, err := EncodeHex(src, nbits, dst)
	if err != nil {
		return "", err
	}
	return string(dst[:n]), nil
}
