package wsconn

import (
	"github.com/embedws/ws"
)

// dispatch routes a completely received frame.
func (c *Conn) dispatch(op ws.OpCode, payload []byte, fin bool) error {
	switch op {
	case ws.OpText, ws.OpBinary, ws.OpContinuation:
		c.deliver(op, payload, fin)

	case ws.OpPing:
		c.log.WithField("payload", string(payload)).Debug("ping received")
		if err := c.SendFrame(ws.OpPong, payload, true); err != nil {
			return err
		}
		c.deliver(op, payload, fin)

	case ws.OpPong:
		c.log.WithField("payload", string(payload)).Debug("pong received")
		c.hb.pongReceived = true
		c.deliver(op, payload, fin)

	case ws.OpClose:
		code, reason := ws.ParseCloseFrameData(payload)
		c.peerCode = code
		c.log.WithField("code", code).WithField("reason", reason).Debug("peer asks for close")
		if c.cfg.Strict && !code.Empty() {
			if err := ws.CheckCloseFrameData(code, reason); err != nil {
				c.log.WithError(err).Warn("protocol violation")
				return c.fail(ws.StatusProtocolError, err)
			}
		}
		c.close(ws.StatusNormalClosure, "", ClosedError{Code: code, Reason: reason})
		return c.cause

	default:
		c.log.WithField("opcode", byte(op)).Warn("unknown opcode")
		return c.fail(ws.StatusProtocolError, ErrUnknownOpCode)
	}
	return nil
}

func (c *Conn) deliver(op ws.OpCode, payload []byte, fin bool) {
	if c.handler != nil {
		c.handler.OnMessage(c, op, payload, fin)
	}
}
