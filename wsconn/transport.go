package wsconn

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Transport is the byte stream a connection works over.
type Transport interface {
	// Read reads up to len(p) bytes which are available without blocking.
	// It returns 0 and nil error when there is nothing to read yet.
	Read(p []byte) (int, error)

	// Write writes as many bytes of p as the transport accepts without
	// blocking for long. A partial write is not an error.
	Write(p []byte) (int, error)

	// Connected reports whether the peer is still connected.
	Connected() bool

	// Close closes the transport.
	Close() error
}

// DefaultPollTimeout is the deadline NetTransport puts on every read and
// write to emulate non-blocking i/o.
const DefaultPollTimeout = time.Millisecond

// NetTransport adapts net.Conn to Transport.
type NetTransport struct {
	conn net.Conn
	poll time.Duration
	down bool
}

// NewNetTransport creates transport over conn with DefaultPollTimeout.
func NewNetTransport(conn net.Conn) *NetTransport {
	return NewNetTransportTimeout(conn, DefaultPollTimeout)
}

// NewNetTransportTimeout creates transport over conn which waits at most d
// for every read or write.
func NewNetTransportTimeout(conn net.Conn, d time.Duration) *NetTransport {
	return &NetTransport{
		conn: conn,
		poll: d,
	}
}

// Read implements Transport.
func (t *NetTransport) Read(p []byte) (int, error) {
	if t.down {
		return 0, ErrDisconnected
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(t.poll)); err != nil {
		return 0, t.fail(err)
	}
	n, err := t.conn.Read(p)
	if isTimeoutError(err) {
		return n, nil
	}
	if err != nil {
		return n, t.fail(err)
	}
	return n, nil
}

// Write implements Transport.
func (t *NetTransport) Write(p []byte) (int, error) {
	if t.down {
		return 0, ErrDisconnected
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.poll)); err != nil {
		return 0, t.fail(err)
	}
	n, err := t.conn.Write(p)
	if isTimeoutError(err) {
		return n, nil
	}
	if err != nil {
		return n, t.fail(err)
	}
	return n, nil
}

// Connected implements Transport.
func (t *NetTransport) Connected() bool {
	return !t.down
}

// Close implements Transport.
func (t *NetTransport) Close() error {
	t.down = true
	return t.conn.Close()
}

// fail marks transport down. Errors meaning the connection is gone, from
// either side, are reported as ErrDisconnected.
func (t *NetTransport) fail(err error) error {
	t.down = true
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return ErrDisconnected
	}
	return errors.Wrap(err, "transport")
}

func isTimeoutError(err error) bool {
	t, ok := err.(net.Error)
	return ok && t.Timeout()
}
