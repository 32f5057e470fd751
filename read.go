package ws

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Errors used by frame reader.
var (
	ErrHeaderShort            = fmt.Errorf("header error: not enough bytes")
	ErrHeaderLengthTooLarge   = fmt.Errorf("header error: payload length does not fit 32 bits")
	ErrHeaderLengthUnexpected = fmt.Errorf("header error: unexpected payload length bits")
)

// LengthFieldSize returns the number of extended payload length bytes that
// follow the second header byte b.
func LengthFieldSize(b byte) int {
	switch b & 0x7f {
	case 126:
		return 2
	case 127:
		return 8
	default:
		return 0
	}
}

// DecodeLength decodes payload length from p, which must hold the fixed part
// of a header: two base bytes followed by the extended length bytes, if any.
//
// It returns ErrHeaderLengthTooLarge if the 64-bit length has any of its
// upper 32 bits set.
func DecodeLength(p []byte) (int64, error) {
	if len(p) < MinHeaderSize {
		return 0, ErrHeaderShort
	}
	ext := LengthFieldSize(p[1])
	if len(p) < MinHeaderSize+ext {
		return 0, ErrHeaderShort
	}
	switch ext {
	case 2:
		return int64(binary.BigEndian.Uint16(p[2:])), nil
	case 8:
		if binary.BigEndian.Uint32(p[2:]) != 0 {
			// Really too big.
			return 0, ErrHeaderLengthTooLarge
		}
		return int64(binary.BigEndian.Uint32(p[6:])), nil
	default:
		return int64(p[1] & 0x7f), nil
	}
}

// DecodeHeader decodes frame header from the beginning of p. It returns
// decoded header and the number of bytes it occupies.
//
// If p does not contain whole header, ErrHeaderShort is returned.
func DecodeHeader(p []byte) (h Header, n int, err error) {
	if len(p) < MinHeaderSize {
		return h, 0, ErrHeaderShort
	}

	h.Fin = p[0]&bit0 != 0
	h.Rsv = (p[0] & 0x70) >> 4
	h.OpCode = OpCode(p[0] & 0x0f)
	h.Masked = p[1]&bit0 != 0

	n = MinHeaderSize + LengthFieldSize(p[1])
	if h.Masked {
		n += 4
	}
	if len(p) < n {
		return h, 0, ErrHeaderShort
	}

	h.Length, err = DecodeLength(p)
	if err != nil {
		return h, 0, err
	}
	if h.Masked {
		copy(h.Mask[:], p[n-4:n])
	}

	return h, n, nil
}

// ReadHeader reads a frame header from r.
func ReadHeader(r io.Reader) (h Header, err error) {
	var bts [MaxHeaderSize]byte

	// Prepare to hold first 2 bytes to choose size of next read.
	_, err = io.ReadFull(r, bts[:MinHeaderSize])
	if err != nil {
		return
	}

	n := MinHeaderSize + LengthFieldSize(bts[1])
	if bts[1]&bit0 != 0 {
		n += 4
	}
	if n > MinHeaderSize {
		_, err = io.ReadFull(r, bts[MinHeaderSize:n])
		if err != nil {
			return
		}
	}

	h, _, err = DecodeHeader(bts[:n])
	return
}

// ReadFrame reads a frame from r.
// It is not designed for high optimized use case cause it makes allocation
// for frame.Header.Length size inside to read frame payload into.
//
// Note that ReadFrame does not unmask payload.
func ReadFrame(r io.Reader) (f Frame, err error) {
	f.Header, err = ReadHeader(r)
	if err != nil {
		return
	}

	if f.Header.Length > 0 {
		// int(f.Header.Length) is safe here cause we have
		// checked it to fit 32 bits in DecodeLength.
		f.Payload = make([]byte, int(f.Header.Length))
		_, err = io.ReadFull(r, f.Payload)
	}

	return
}
