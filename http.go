package ws

import (
	"fmt"
	"io"

	"github.com/gobwas/pool/pbufio"
)

const (
	textUpgrade   = "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n"
	crlf          = "\r\n"
	colonAndSpace = ": "

	headerSecAccept   = "Sec-WebSocket-Accept"
	headerSecProtocol = "Sec-WebSocket-Protocol"
)

// Errors used by the upgrade helpers.
var (
	ErrBadUpgrade    = fmt.Errorf("missing or bad upgrade header")
	ErrBadConnection = fmt.Errorf("missing or bad connection header")
	ErrBadSecKey     = fmt.Errorf("bad %q header", "Sec-WebSocket-Key")
	ErrBadProtocol   = fmt.Errorf("malformed %q header", headerSecProtocol)
)

var (
	specHeaderValueUpgrade         = []byte("websocket")
	specHeaderValueConnectionLower = []byte("upgrade")
)

// CheckUpgradeHeaders checks the values of request Upgrade and Connection
// headers. Both could be comma separated token lists; matching is case
// insensitive.
//
// The rest of request validation (request line, Host, version) is made by
// the HTTP layer before the connection engine takes over.
func CheckUpgradeHeaders(upgrade, connection []byte) error {
	if !btsHasToken(upgrade, specHeaderValueUpgrade) {
		return ErrBadUpgrade
	}
	if !btsHasToken(connection, specHeaderValueConnectionLower) {
		return ErrBadConnection
	}
	return nil
}

// SelectProtocol returns the first subprotocol from Sec-WebSocket-Protocol
// header value accepted by check. It returns ErrBadProtocol for a malformed
// header.
func SelectProtocol(header []byte, check func([]byte) bool) (string, error) {
	p, ok := btsSelectProtocol(header, check)
	if !ok {
		return "", ErrBadProtocol
	}
	return string(p), nil
}

// WriteUpgradeResponse writes "101 Switching Protocols" response for
// given client key into w. Non-empty protocol is sent as the selected
// subprotocol.
func WriteUpgradeResponse(w io.Writer, clientKey, protocol string) error {
	if len(clientKey) != nonceSize {
		return ErrBadSecKey
	}

	bw := pbufio.GetWriter(w, 512)
	defer pbufio.PutWriter(bw)

	bw.WriteString(textUpgrade)
	httpWriteHeader(bw, headerSecAccept, AcceptKey(clientKey))
	if protocol != "" {
		httpWriteHeader(bw, headerSecProtocol, protocol)
	}
	bw.WriteString(crlf)

	return bw.Flush()
}

type stringWriter interface {
	WriteString(string) (int, error)
}

func httpWriteHeader(bw stringWriter, key, value string) {
	bw.WriteString(key)
	bw.WriteString(colonAndSpace)
	bw.WriteString(value)
	bw.WriteString(crlf)
}
