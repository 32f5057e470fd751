package wsconn

import (
	"time"

	"github.com/embedws/ws"
)

// forcePingSlack is subtracted in addition to the ping interval when a pong
// timeout is detected, to make the next Tick send a ping.
const forcePingSlack = 500 * time.Millisecond

type heartbeat struct {
	interval    time.Duration
	pongTimeout time.Duration
	threshold   int

	misses       int
	lastPing     time.Time
	pongReceived bool
}

// EnableHeartbeat enables ping/pong heartbeat process. A ping is sent every
// interval; pong not received within pongTimeout after a ping counts as a
// miss. After threshold misses in a row the connection is disconnected.
// Zero threshold means never disconnect, zero interval disables heartbeat.
func (c *Conn) EnableHeartbeat(interval, pongTimeout time.Duration, threshold int) {
	c.hb = heartbeat{
		interval:    interval,
		pongTimeout: pongTimeout,
		threshold:   threshold,
		lastPing:    c.clk.Now(),
	}
}

// Misses returns the number of consecutive heartbeat timeouts.
func (c *Conn) Misses() int { return c.hb.misses }

// Tick sends heartbeat ping when it is due and checks pong timeout. It is
// meant to be called periodically, e.g. once per poll loop iteration.
//
// It returns ErrHeartbeatTimeout when the connection was evicted.
func (c *Conn) Tick() error {
	hb := &c.hb
	if hb.interval == 0 || c.status != StatusConnected {
		return nil
	}
	if c.clk.Since(hb.lastPing) > hb.interval {
		if err := c.SendFrame(ws.OpPing, nil, true); err != nil {
			return err
		}
		hb.lastPing = c.clk.Now()
		hb.pongReceived = false
	}
	return c.checkPong()
}

func (c *Conn) checkPong() error {
	hb := &c.hb
	if hb.pongReceived {
		hb.misses = 0
		return nil
	}
	since := c.clk.Since(hb.lastPing)
	if since <= hb.pongTimeout {
		return nil
	}

	hb.misses++
	// Force ping on the next run.
	hb.lastPing = c.clk.Now().Add(-hb.interval - forcePingSlack)
	c.cfg.Metrics.heartbeatTimeout()

	c.log.WithField("since", since).WithField("count", hb.misses).Debug("pong timeout")

	if hb.threshold > 0 && hb.misses >= hb.threshold {
		c.log.WithField("count", hb.misses).Warn("heartbeat timeout, disconnecting")
		c.teardown(ErrHeartbeatTimeout)
		return ErrHeartbeatTimeout
	}
	return nil
}
