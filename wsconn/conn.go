package wsconn

import (
	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/embedws/ws"
)

// Role describes which end of the connection this side is.
type Role uint8

// Roles of connection.
const (
	RoleServer Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// Status represents connection lifecycle status.
// Status changes only from StatusConnecting to StatusConnected and from any
// of them to StatusClosed.
type Status uint8

// Connection statuses.
const (
	StatusClosed Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "closed"
	}
}

// Handler receives every dispatched data or control frame.
//
// Note that payload is only valid until OnMessage returns.
type Handler interface {
	OnMessage(c *Conn, op ws.OpCode, payload []byte, fin bool)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as
// Handler.
type HandlerFunc func(c *Conn, op ws.OpCode, payload []byte, fin bool)

// OnMessage implements Handler.
func (fn HandlerFunc) OnMessage(c *Conn, op ws.OpCode, payload []byte, fin bool) {
	fn(c, op, payload, fin)
}

// Conn is a WebSocket connection over a Transport.
//
// Note that Conn methods are not goroutine safe.
type Conn struct {
	// ID is a random identifier of the connection used in logs.
	ID string

	role    Role
	status  Status
	t       Transport
	handler Handler
	cfg     Config
	clk     clock.Clock
	log     logrus.FieldLogger

	rx receiver
	hb heartbeat

	// state is used by header checks in strict mode.
	state ws.State

	peerCode ws.StatusCode
	cause    error
}

// NewConn creates connection over t in StatusConnecting status. The
// HeaderDone method must be called once the HTTP upgrade is complete.
//
// Nil cfg means default configuration. Nil h discards received frames.
func NewConn(t Transport, role Role, h Handler, cfg *Config) *Conn {
	c := &Conn{
		ID:      uuid.NewString(),
		role:    role,
		status:  StatusConnecting,
		t:       t,
		handler: h,
		cfg:     cfg.withDefaults(),
	}
	c.clk = c.cfg.Clock
	c.log = c.cfg.Logger.WithFields(logrus.Fields{
		"conn": c.ID,
		"role": role.String(),
	})
	if role == RoleClient {
		c.state = ws.StateClientSide
	} else {
		c.state = ws.StateServerSide
	}
	c.rx.reset()
	return c
}

// Role returns role of the connection.
func (c *Conn) Role() Role { return c.role }

// Status returns current status of the connection.
func (c *Conn) Status() Status { return c.status }

// Err returns the reason of connection teardown. It is nil while the
// connection is open or when it was disconnected deliberately.
func (c *Conn) Err() error { return c.cause }

// PeerCloseCode returns status code received from peer within close frame.
// It is empty if peer did not send any.
func (c *Conn) PeerCloseCode() ws.StatusCode { return c.peerCode }

// HeaderDone promotes connection to StatusConnected. It must be called by
// the HTTP layer once the upgrade handshake is complete.
func (c *Conn) HeaderDone() error {
	if c.status != StatusConnecting {
		return ErrBadStatus
	}
	c.status = StatusConnected
	c.rx.reset()
	c.hb.lastPing = c.clk.Now()
	c.log.Debug("header handling done")
	return nil
}

// Close sends close frame with given code and reason to the peer and tears
// the connection down. The close frame is sent only when connection is
// established and code is not empty.
// It returns error of sending close frame, if any.
func (c *Conn) Close(code ws.StatusCode, reason string) error {
	return c.close(code, reason, CloseError{Code: code})
}

// Disconnect tears the connection down without sending close frame.
func (c *Conn) Disconnect() {
	c.teardown(nil)
}

// fail closes connection with code because of err. It returns CloseError
// describing the close.
func (c *Conn) fail(code ws.StatusCode, err error) error {
	cause := CloseError{Code: code, Err: err}
	c.log.WithError(err).WithField("code", code).Debug("closing connection")
	c.close(code, "", cause)
	return cause
}

func (c *Conn) close(code ws.StatusCode, reason string, cause error) (err error) {
	if c.status == StatusClosed {
		return nil
	}
	if c.status == StatusConnected && !code.Empty() {
		err = c.writeFrame(ws.OpClose, ws.NewCloseFrameBody(code, reason), true)
		if err != nil {
			c.log.WithError(err).Debug("could not send close frame")
		}
	}
	c.teardown(cause)
	return err
}

func (c *Conn) teardown(cause error) {
	if c.status == StatusClosed {
		return
	}
	c.status = StatusClosed
	c.cause = cause
	c.rx.reset()

	if err := c.t.Close(); err != nil {
		c.log.WithError(err).Debug("transport close error")
	}

	code := closeCode(cause)
	c.cfg.Metrics.closed(code)

	log := c.log.WithField("code", code)
	if cause != nil {
		log = log.WithError(cause)
	}
	log.Info("disconnected")

	if fn := c.cfg.OnClose; fn != nil {
		fn(c, cause)
	}
}
