package wsconn

import (
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/sirupsen/logrus"
)

// Default values used for zero Config fields.
const (
	DefaultMaxPayloadSize = 15 * 1024
	DefaultTimeout        = 5 * time.Second
	DefaultYieldInterval  = time.Millisecond
)

// Config contains options shared by connections.
// Zero values of the fields mean defaults.
type Config struct {
	// MaxPayloadSize limits the payload length of received frames. Frames
	// declaring bigger length are rejected with 1009 close code.
	MaxPayloadSize int64

	// Timeout is the inactivity timeout of transport reads and writes. It
	// is reset on every successful partial transfer.
	Timeout time.Duration

	// YieldInterval is the time the default Yield sleeps for.
	YieldInterval time.Duration

	// Yield is called by blocking reads and writes while transport has no
	// progress. By default it sleeps for YieldInterval on Clock.
	Yield func()

	// Clock is the source of time. It is clock.NewClock() by default.
	Clock clock.Clock

	// Logger receives connection logs. Frame level events are logged with
	// debug level.
	Logger logrus.FieldLogger

	// Pool is used to allocate payload buffers. A nil buffer returned from
	// Pool is treated as resource exhaustion.
	Pool Pool

	// Metrics is optional set of counters updated by connections.
	Metrics *Metrics

	// Strict enables RFC6455 header checks for received frames: reserved
	// bits and op codes, masking direction, fragmentation order and control
	// frames limits. Off by default, which makes connections accept
	// unmasked client frames and ignore rsv bits.
	Strict bool

	// OnClose is called exactly once when a connection is torn down. The
	// err is nil for a deliberate local disconnect.
	OnClose func(c *Conn, err error)
}

func (c *Config) withDefaults() Config {
	var ret Config
	if c != nil {
		ret = *c
	}
	if ret.MaxPayloadSize <= 0 {
		ret.MaxPayloadSize = DefaultMaxPayloadSize
	}
	if ret.Timeout <= 0 {
		ret.Timeout = DefaultTimeout
	}
	if ret.YieldInterval <= 0 {
		ret.YieldInterval = DefaultYieldInterval
	}
	if ret.Clock == nil {
		ret.Clock = clock.NewClock()
	}
	if ret.Yield == nil {
		clk, d := ret.Clock, ret.YieldInterval
		ret.Yield = func() { clk.Sleep(d) }
	}
	if ret.Logger == nil {
		ret.Logger = logrus.StandardLogger()
	}
	if ret.Pool == nil {
		ret.Pool = DefaultPool
	}
	return ret
}
