package ws

import (
	"encoding/binary"
	"io"
)

const (
	bit0 = 0x80
	bit1 = 0x40
	bit2 = 0x20
	bit3 = 0x10
	bit4 = 0x08
	bit5 = 0x04
	bit6 = 0x02
	bit7 = 0x01

	len7  = int64(125)
	len16 = int64(^(uint16(0)))
)

// HeaderSize returns the number of bytes needed to encode header of a frame
// with given payload length and masking.
func HeaderSize(length int64, masked bool) (n int) {
	switch {
	case length <= len7:
		n = 2
	case length <= len16:
		n = 4
	default:
		n = 10
	}
	if masked {
		n += 4
	}
	return n
}

// PutHeader encodes h into p and returns the number of bytes written.
// It panics if p is shorter than HeaderSize(h.Length, h.Masked).
//
// Rsv bits are never encoded. Lengths above 16 bits are encoded in the
// 64-bit form with the upper 32 bits always set to zero, so h.Length must
// not exceed MaxLength.
func PutHeader(p []byte, h Header) int {
	n := HeaderSize(h.Length, h.Masked)
	_ = p[n-1] // Early bounds check.

	p[0] = byte(h.OpCode) & 0x0f
	if h.Fin {
		p[0] |= bit0
	}

	pos := 2 // after fin, rsv and op code byte and length byte.
	switch {
	case h.Length <= len7:
		p[1] = byte(h.Length)
	case h.Length <= len16:
		p[1] = 126
		binary.BigEndian.PutUint16(p[2:], uint16(h.Length))
		pos += 2
	default:
		p[1] = 127
		binary.BigEndian.PutUint64(p[2:], uint64(uint32(h.Length)))
		pos += 8
	}

	if h.Masked {
		p[1] |= bit0
		copy(p[pos:], h.Mask[:])
	}

	return n
}

// WriteHeader writes header binary representation into w.
func WriteHeader(w io.Writer, h Header) error {
	if h.Length < 0 || h.Length > MaxLength {
		return ErrHeaderLengthUnexpected
	}
	var bts [MaxHeaderSize]byte
	n := PutHeader(bts[:], h)
	_, err := w.Write(bts[:n])
	return err
}

// WriteFrame writes frame binary representation into w.
func WriteFrame(w io.Writer, f Frame) error {
	err := WriteHeader(w, f.Header)
	if err != nil {
		return err
	}
	_, err = w.Write(f.Payload)
	return err
}
