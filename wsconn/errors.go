package wsconn

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/embedws/ws"
)

// Errors used by connections.
var (
	ErrDisconnected     = errors.New("transport is disconnected")
	ErrTimeout          = errors.New("transport i/o timeout")
	ErrShortWrite       = errors.New("short write")
	ErrNotConnected     = errors.New("connection is not established")
	ErrBadStatus        = errors.New("unexpected connection status")
	ErrHeaderOverflow   = errors.New("requested header size exceeds accumulator capacity")
	ErrNoBuffer         = errors.New("no memory to handle payload")
	ErrMessageTooBig    = errors.New("payload length exceeds limit")
	ErrUnknownOpCode    = errors.New("unknown op code")
	ErrHeartbeatTimeout = errors.New("heartbeat pong timeout")
)

// CloseError is returned when the connection was closed by this end with
// given status code because of Err.
type CloseError struct {
	Code ws.StatusCode
	Err  error
}

// Error implements error interface.
func (err CloseError) Error() string {
	s := "ws close " + strconv.FormatUint(uint64(err.Code), 10)
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

// Cause returns the reason of the close. It makes CloseError work with
// errors.Cause().
func (err CloseError) Cause() error { return err.Err }

// Unwrap returns the reason of the close.
func (err CloseError) Unwrap() error { return err.Err }

// ClosedError is returned when peer has closed the connection with
// appropriate code and a textual reason.
type ClosedError struct {
	Code   ws.StatusCode
	Reason string
}

// Error implements error interface.
func (err ClosedError) Error() string {
	return "ws closed: " + strconv.FormatUint(uint64(err.Code), 10) + " " + err.Reason
}

// closeCode returns status code describing the cause of connection
// teardown. Teardowns without close frame are reported as abnormal.
func closeCode(cause error) ws.StatusCode {
	switch e := cause.(type) {
	case CloseError:
		return e.Code
	case ClosedError:
		return ws.StatusNormalClosure
	case nil:
		return ws.StatusNormalClosure
	}
	return ws.StatusAbnormalClosure
}
