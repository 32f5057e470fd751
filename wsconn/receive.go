package wsconn

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/embedws/ws"
)

type rxState uint8

// Receive states. Every frame passes all of them in order and then the
// receiver returns to rxAwaitHeader.
const (
	rxAwaitHeader rxState = iota
	rxHeaderDecoded
	rxAwaitPayload
	rxDispatched
)

func (s rxState) String() string {
	switch s {
	case rxAwaitHeader:
		return "await-header"
	case rxHeaderDecoded:
		return "header-decoded"
	case rxAwaitPayload:
		return "await-payload"
	case rxDispatched:
		return "dispatched"
	}
	return "unknown"
}

// receiver accumulates header bytes across Handle calls.
type receiver struct {
	state  rxState
	target int // Number of header bytes accumulation waits for.

	acc [ws.MaxHeaderSize]byte
	n   int // Number of valid bytes in acc. Always <= len(acc).

	// since is the time of last accumulation progress.
	since time.Time

	header ws.Header
}

func (rx *receiver) reset() {
	rx.state = rxAwaitHeader
	rx.target = ws.MinHeaderSize
	rx.n = 0
	rx.header = ws.Header{}
}

// Handle makes progress on receiving the next frame. It reads whatever the
// transport has available; once a frame is complete it is dispatched. At
// most one frame is dispatched per call.
//
// It is safe to call Handle when there is no new data. Handle is a no-op for
// connections in StatusConnecting status.
//
// The returned error is non-nil only when the connection was closed during
// the call or earlier.
func (c *Conn) Handle() error {
	switch c.status {
	case StatusConnecting:
		return nil
	case StatusClosed:
		if c.cause != nil {
			return c.cause
		}
		return ErrNotConnected
	}
	if !c.t.Connected() {
		c.teardown(ErrDisconnected)
		return ErrDisconnected
	}
	return c.handleFrame()
}

func (c *Conn) handleFrame() error {
	rx := &c.rx

	if rx.state == rxAwaitHeader {
		ok, err := c.readHeader()
		if !ok {
			return err
		}
	}

	h := rx.header
	c.log.WithFields(logrus.Fields{
		"fin":    h.Fin,
		"rsv":    h.Rsv,
		"opcode": h.OpCode,
		"mask":   h.Masked,
		"length": h.Length,
	}).Debug("read message frame")

	if c.cfg.Strict {
		if err := ws.CheckHeader(h, c.state); err != nil {
			c.log.WithError(err).Warn("protocol violation")
			return c.fail(ws.StatusProtocolError, err)
		}
		if h.OpCode.IsData() {
			c.state = c.state.With(ws.StateFragmented, !h.Fin)
		}
	}

	var payload []byte
	if h.Length > 0 {
		// One more byte to terminate text payloads.
		buf := c.cfg.Pool.Get(int(h.Length) + 1)
		if buf == nil {
			c.log.WithField("length", h.Length).Warn("no memory to handle payload")
			return c.fail(ws.StatusInternalServerError, ErrNoBuffer)
		}
		defer c.cfg.Pool.Put(buf)

		rx.state = rxAwaitPayload
		payload = buf[:h.Length]
		if err := c.readExact(payload); err != nil {
			c.log.WithError(err).Debug("missing payload data")
			return c.fail(ws.StatusProtocolError, err)
		}
		buf[h.Length] = 0

		if h.Masked {
			ws.Cipher(payload, h.Mask, 0)
		}
	}

	rx.state = rxDispatched
	c.cfg.Metrics.received(h.OpCode)
	err := c.dispatch(h.OpCode, payload, h.Fin)

	if c.status != StatusClosed {
		rx.reset()
	}
	return err
}

// readHeader accumulates header bytes. It reports true once the header is
// decoded into rx.header.
func (c *Conn) readHeader() (bool, error) {
	rx := &c.rx

	size := ws.MinHeaderSize
	if ok, err := c.waitFor(size); !ok {
		return false, err
	}

	size += ws.LengthFieldSize(rx.acc[1])
	if ok, err := c.waitFor(size); !ok {
		return false, err
	}

	length, err := ws.DecodeLength(rx.acc[:size])
	if err == nil && length > c.cfg.MaxPayloadSize {
		err = ErrMessageTooBig
	}
	if err != nil {
		c.log.WithError(err).WithField("length", length).Warn("payload too big")
		return false, c.fail(ws.StatusMessageTooBig, err)
	}

	if rx.acc[1]&0x80 != 0 {
		size += 4
		if ok, err := c.waitFor(size); !ok {
			return false, err
		}
	}

	h, _, err := ws.DecodeHeader(rx.acc[:size])
	if err != nil {
		return false, c.fail(ws.StatusProtocolError, err)
	}
	rx.header = h
	rx.state = rxHeaderDecoded

	return true, nil
}

// waitFor reports whether the accumulator holds at least n bytes. If it is
// not so, it reads the missing suffix from the transport as far as bytes
// are available. A request for more bytes than the accumulator holds is
// refused with ErrHeaderOverflow and leaves the connection open.
func (c *Conn) waitFor(n int) (bool, error) {
	rx := &c.rx
	if n > len(rx.acc) {
		c.log.WithField("size", n).Debug("wait for: size too big")
		return false, ErrHeaderOverflow
	}
	rx.target = n
	for rx.n < n {
		m, err := c.t.Read(rx.acc[rx.n:n])
		if err != nil {
			return false, c.fail(ws.StatusProtocolError, errors.Wrap(err, "read header"))
		}
		if m == 0 {
			break
		}
		rx.n += m
		rx.since = c.clk.Now()
	}
	if rx.n >= n {
		return true, nil
	}
	if rx.n > 0 && c.clk.Since(rx.since) > c.cfg.Timeout {
		c.log.WithField("have", rx.n).WithField("want", n).Debug("header read timeout")
		return false, c.fail(ws.StatusProtocolError, ErrTimeout)
	}
	return false, nil
}
