// Package bits provides checked MSB-first bit access over sized byte slices and
// the hex encoding used for DCI payloads in captured traces.
package bits

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when a read or write runs past the declared bit length.
	ErrOverflow = errors.New("bit buffer overflow")
	// ErrInsufficientInput is returned when the source holds fewer bits than requested.
	ErrInsufficientInput = errors.New("insufficient input")
	// ErrBufferTooSmall is returned when the destination cannot hold the result.
	ErrBufferTooSmall = errors.New("buffer too small")
)

// NofBytes returns the number of whole bytes needed to hold nbits.
func NofBytes(nbits int) int { return (nbits + 7) / 8 }

// Reader reads bits MSB-first from a byte slice.
type Reader struct {
	buf   []byte
	nbits int
	pos   int
}

// NewReader returns a reader over the first nbits of buf.
func NewReader(buf []byte, nbits int) (*Reader, error) {
	if nbits < 0 || NofBytes(nbits) > len(buf) {
		return nil, fmt.Errorf("reader of %d bits over %d bytes: %w", nbits, len(buf), ErrInsufficientInput)
	}
	return &Reader{buf: buf, nbits: nbits}, nil
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int { return r.nbits - r.pos }

// Pos returns the number of bits consumed so far.
func (r *Reader) Pos() int { return r.pos }

// ReadBits reads n (0..32) bits as an unsigned big-endian value.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("read of %d bits: %w", n, ErrOverflow)
	}
	if n > r.Remaining() {
		return 0, fmt.Errorf("read of %d bits with %d remaining: %w", n, r.Remaining(), ErrOverflow)
	}
	var v uint32
	for i := 0; i < n; i++ {
		b := r.buf[r.pos>>3] >> (7 - uint(r.pos&7)) & 1
		v = v<<1 | uint32(b)
		r.pos++
	}
	return v, nil
}

// ReadFlag reads a single bit.
func (r *Reader) ReadFlag() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// Skip discards n bits.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("skip of %d bits with %d remaining: %w", n, r.Remaining(), ErrOverflow)
	}
	r.pos += n
	return nil
}

// Writer writes bits MSB-first into a byte slice. Bits beyond the written
// length are left zero.
type Writer struct {
	buf   []byte
	nbits int
	pos   int
}

// NewWriter returns a writer of at most nbits into buf. The covered bytes are cleared.
func NewWriter(buf []byte, nbits int) (*Writer, error) {
	if nbits < 0 || NofBytes(nbits) > len(buf) {
		return nil, fmt.Errorf("writer of %d bits over %d bytes: %w", nbits, len(buf), ErrBufferTooSmall)
	}
	clear(buf[:NofBytes(nbits)])
	return &Writer{buf: buf, nbits: nbits}, nil
}

// Len returns the number of bits written.
func (w *Writer) Len() int { return w.pos }

// WriteBits writes the low n (0..32) bits of v, most significant first.
func (w *Writer) WriteBits(v uint32, n int) error {
	if n < 0 || n > 32 {
		return fmt.Errorf("write of %d bits: %w", n, ErrOverflow)
	}
	if n > w.nbits-w.pos {
		return fmt.Errorf("write of %d bits with %d free: %w", n, w.nbits-w.pos, ErrOverflow)
	}
	for i := n - 1; i >= 0; i-- {
		if v>>uint(i)&1 == 1 {
			w.buf[w.pos>>3] |= 0x80 >> uint(w.pos&7)
		}
		w.pos++
	}
	return nil
}

// WriteFlag writes a single bit.
func (w *Writer) WriteFlag(b bool) error {
	if b {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// Bytes returns the bytes covering the written bits.
func (w *Writer) Bytes() []byte { return w.buf[:NofBytes(w.pos)] }
