package wsconn

import (
	"github.com/pkg/errors"

	"github.com/embedws/ws"
)

// packLimit is the payload size below which header and payload are sent
// with a single transport write.
const packLimit = 1400

// SendFrame sends single frame with given operation code, payload and fin
// flag. Client connections mask the payload with random key; p is never
// modified.
//
// A failed write is fatal: connection is torn down and the error is
// returned. ErrNotConnected is returned without teardown when connection is
// not in StatusConnected status.
func (c *Conn) SendFrame(op ws.OpCode, p []byte, fin bool) error {
	err := c.writeFrame(op, p, fin)
	if err != nil && err != ErrNotConnected {
		c.teardown(err)
	}
	return err
}

// SendText sends s within single text frame.
func (c *Conn) SendText(s string) error {
	return c.SendFrame(ws.OpText, []byte(s), true)
}

// SendBinary sends p within single binary frame.
func (c *Conn) SendBinary(p []byte) error {
	return c.SendFrame(ws.OpBinary, p, true)
}

// Ping sends ping frame with given payload.
func (c *Conn) Ping(p []byte) error {
	return c.SendFrame(ws.OpPing, p, true)
}

func (c *Conn) writeFrame(op ws.OpCode, p []byte, fin bool) (err error) {
	if c.status != StatusConnected || !c.t.Connected() {
		c.log.WithField("status", c.status).Debug("send frame: not connected")
		return ErrNotConnected
	}
	if int64(len(p)) > ws.MaxLength {
		return ErrMessageTooBig
	}

	h := ws.Header{
		Fin:    fin,
		OpCode: op,
		Length: int64(len(p)),
		Masked: c.role == RoleClient,
	}
	if h.Masked {
		h.Mask = ws.NewMask()
	}
	c.log.WithField("opcode", op).WithField("length", h.Length).Debug("send message frame")

	var (
		n    = ws.HeaderSize(h.Length, h.Masked)
		want = n + len(p)
		sent int
	)
	if h.Masked || len(p) < packLimit {
		buf := c.cfg.Pool.Get(want)
		if buf == nil && h.Masked {
			return ErrNoBuffer
		}
		if buf != nil {
			defer c.cfg.Pool.Put(buf)

			ws.PutHeader(buf, h)
			copy(buf[n:], p)
			if h.Masked {
				ws.Cipher(buf[n:], h.Mask, 0)
			}
			sent, err = c.writeExact(buf)
			return c.checkWrite(op, sent, want, err)
		}
	}

	var hdr [ws.MaxHeaderSize]byte
	ws.PutHeader(hdr[:], h)
	sent, err = c.writeExact(hdr[:n])
	if err == nil && len(p) > 0 {
		var m int
		m, err = c.writeExact(p)
		sent += m
	}
	return c.checkWrite(op, sent, want, err)
}

func (c *Conn) checkWrite(op ws.OpCode, sent, want int, err error) error {
	if err == nil && sent != want {
		err = ErrShortWrite
	}
	if err != nil {
		return errors.Wrapf(err, "send %s frame: %d of %d bytes written", op, sent, want)
	}
	c.cfg.Metrics.sent(op)
	return nil
}
