package ws

import (
	"fmt"
	"unicode/utf8"
)

// State describes an endpoint for the protocol checks below.
// Zero State is an endpoint of unknown side with nothing negotiated.
type State uint8

// Endpoint state flags.
const (
	// StateServerSide is set for the accepting end.
	StateServerSide State = 0x1 << iota
	// StateClientSide is set for the initiating end.
	StateClientSide
	// StateExtended is set when an extension defining rsv bits was
	// negotiated.
	StateExtended
	// StateFragmented is set between the first and the final frame of a
	// fragmented message.
	StateFragmented
)

// Is reports whether any of v flags is set in s.
func (s State) Is(v State) bool {
	return s&v != 0
}

// With returns s with v flags set when on is true and cleared otherwise.
func (s State) With(v State, on bool) State {
	if on {
		return s | v
	}
	return s &^ v
}

// ProtocolError describes error during checking/parsing websocket frames or headers.
type ProtocolError error

// Errors used by the protocol checkers.
var (
	ErrProtocolOpCodeReserved             = ProtocolError(fmt.Errorf("use of reserved op code"))
	ErrProtocolControlPayloadOverflow     = ProtocolError(fmt.Errorf("control frame payload limit exceeded"))
	ErrProtocolControlNotFinal            = ProtocolError(fmt.Errorf("control frame is not final"))
	ErrProtocolNonZeroRsv                 = ProtocolError(fmt.Errorf("non-zero rsv bits with no extension negotiated"))
	ErrProtocolMaskRequired               = ProtocolError(fmt.Errorf("frames from client to server must be masked"))
	ErrProtocolMaskUnexpected             = ProtocolError(fmt.Errorf("frames from server to client must be not masked"))
	ErrProtocolContinuationExpected       = ProtocolError(fmt.Errorf("unexpected non-continuation data frame"))
	ErrProtocolContinuationUnexpected     = ProtocolError(fmt.Errorf("unexpected continuation data frame"))
	ErrProtocolStatusCodeNotInUse         = ProtocolError(fmt.Errorf("status code is not in use"))
	ErrProtocolStatusCodeApplicationLevel = ProtocolError(fmt.Errorf("status code is only application level"))
	ErrProtocolStatusCodeNoMeaning        = ProtocolError(fmt.Errorf("status code has no meaning yet"))
	ErrProtocolStatusCodeUnknown          = ProtocolError(fmt.Errorf("status code is not defined in RFC 6455"))
	ErrProtocolInvalidUTF8                = ProtocolError(fmt.Errorf("invalid utf8 sequence in close reason"))
)

// CheckHeader checks received header h against RFC6455 rules for an
// endpoint in state s.
//
// Connections in wsconn call it only in strict mode; by default reserved bits
// and unmasked client frames are let through.
func CheckHeader(h Header, s State) error {
	if h.OpCode.IsReserved() {
		return ErrProtocolOpCodeReserved
	}
	if h.OpCode.IsControl() && h.Length > MaxControlFramePayloadSize {
		return ErrProtocolControlPayloadOverflow
	}
	if h.OpCode.IsControl() && !h.Fin {
		return ErrProtocolControlNotFinal
	}

	// [RFC6455]: MUST be 0 unless an extension is negotiated that defines meanings for
	// non-zero values.
	if h.Rsv != 0 && !s.Is(StateExtended) {
		return ErrProtocolNonZeroRsv
	}

	// [RFC6455]: The server MUST close the connection upon receiving a frame that is not masked.
	// A client MUST close a connection if it detects a masked frame.
	if s.Is(StateServerSide) && !h.Masked {
		return ErrProtocolMaskRequired
	}
	if s.Is(StateClientSide) && h.Masked {
		return ErrProtocolMaskUnexpected
	}

	// [RFC6455]: See detailed explanation in 5.4 section.
	if h.OpCode.IsData() {
		cont := h.OpCode == OpContinuation
		if s.Is(StateFragmented) && !cont {
			return ErrProtocolContinuationExpected
		}
		if !s.Is(StateFragmented) && cont {
			return ErrProtocolContinuationUnexpected
		}
	}

	return nil
}

// CheckCloseFrameData checks status code and reason received within close
// frame. Close frames with no body carry empty code and must not be checked.
func CheckCloseFrameData(code StatusCode, reason string) error {
	if code.IsNotUsed() {
		return ErrProtocolStatusCodeNotInUse
	}
	if code.IsProtocolReserved() {
		return ErrProtocolStatusCodeApplicationLevel
	}
	if code == StatusNoMeaningYet {
		return ErrProtocolStatusCodeNoMeaning
	}
	if code.IsProtocolSpec() && !code.IsProtocolDefined() {
		return ErrProtocolStatusCodeUnknown
	}
	if !utf8.ValidString(reason) {
		return ErrProtocolInvalidUTF8
	}
	return nil
}
