package wsconn

import (
	"context"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"

	"github.com/embedws/ws"
)

// Loop drives many connections from a single goroutine. Every Poll gives
// each connection a chance to receive one frame and run its heartbeat.
type Loop struct {
	clk clock.Clock
	log logrus.FieldLogger

	conns []*Conn

	mu      sync.Mutex
	pending *queue.Queue // Conns added since last Poll.
}

// NewLoop creates loop which takes Clock and Logger from cfg.
func NewLoop(cfg *Config) *Loop {
	c := cfg.withDefaults()
	return &Loop{
		clk:     c.Clock,
		log:     c.Logger,
		pending: queue.New(),
	}
}

// Add schedules c to be driven by the loop starting from the next Poll.
// It is safe to call Add from other goroutines.
func (l *Loop) Add(c *Conn) {
	l.mu.Lock()
	l.pending.Add(c)
	l.mu.Unlock()
}

// Len returns number of connections driven by the loop.
func (l *Loop) Len() int {
	return len(l.conns)
}

// Poll makes one pass over all connections. Closed connections are
// dropped. It returns the number of connections left.
func (l *Loop) Poll() int {
	l.mu.Lock()
	for l.pending.Length() > 0 {
		l.conns = append(l.conns, l.pending.Remove().(*Conn))
	}
	l.mu.Unlock()

	live := l.conns[:0]
	for _, c := range l.conns {
		log := l.log.WithField("conn", c.ID)
		if err := c.Handle(); err != nil {
			log.WithError(err).Debug("handle error")
		}
		if err := c.Tick(); err != nil {
			log.WithError(err).Debug("heartbeat error")
		}
		if c.Status() == StatusClosed {
			log.Debug("dropping closed connection")
			continue
		}
		live = append(live, c)
	}
	for i := len(live); i < len(l.conns); i++ {
		l.conns[i] = nil
	}
	l.conns = live

	return len(l.conns)
}

// Run polls connections every interval until ctx is done. Then it closes
// all connections with going away status code and returns ctx.Err().
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := l.clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case <-ticker.C():
			l.Poll()
		}
	}
}

func (l *Loop) shutdown() {
	l.Poll()
	for _, c := range l.conns {
		c.Close(ws.StatusGoingAway, "")
	}
	l.conns = nil
}
