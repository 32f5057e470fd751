package wsconn

import (
	"github.com/pkg/errors"
)

// readExact reads exactly len(p) bytes from the transport. It gives up when
// the transport disconnects or makes no progress for Config.Timeout.
func (c *Conn) readExact(p []byte) error {
	last := c.clk.Now()
	for len(p) > 0 {
		if !c.t.Connected() {
			return ErrDisconnected
		}
		if c.clk.Since(last) > c.cfg.Timeout {
			c.log.WithField("left", len(p)).Debug("read timeout")
			return ErrTimeout
		}
		n, err := c.t.Read(p)
		if err != nil {
			return errors.Wrap(err, "read")
		}
		if n > 0 {
			last = c.clk.Now()
			p = p[n:]
			continue
		}
		c.cfg.Yield()
	}
	return nil
}

// writeExact writes p to the transport. It returns the number of bytes
// written, which is less than len(p) only together with non-nil error.
func (c *Conn) writeExact(p []byte) (total int, err error) {
	last := c.clk.Now()
	for len(p) > 0 {
		if !c.t.Connected() {
			return total, ErrDisconnected
		}
		if c.clk.Since(last) > c.cfg.Timeout {
			c.log.WithField("left", len(p)).Debug("write timeout")
			return total, ErrTimeout
		}
		n, err := c.t.Write(p)
		if n > 0 {
			last = c.clk.Now()
			p = p[n:]
			total += n
		}
		if err != nil {
			return total, errors.Wrap(err, "write")
		}
		if n == 0 {
			c.cfg.Yield()
		}
	}
	return total, nil
}

// WriteString writes raw bytes of s to the transport, bypassing framing.
// It is used by the HTTP layer to send handshake lines.
func (c *Conn) WriteString(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return c.writeExact([]byte(s))
}
