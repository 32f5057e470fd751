package wsconn

import (
	"bytes"
	"io"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/embedws/ws"
)

// stubTransport is a scripted Transport. Read returns bytes pushed so far
// and 0 when there are none.
type stubTransport struct {
	in  []byte
	out bytes.Buffer

	// wlimit limits the number of bytes accepted by single Write.
	wlimit int
	rerr   error
	down   bool
	closed int
}

func (t *stubTransport) push(p ...byte) {
	t.in = append(t.in, p...)
}

func (t *stubTransport) Read(p []byte) (int, error) {
	if t.rerr != nil {
		return 0, t.rerr
	}
	n := copy(p, t.in)
	t.in = t.in[n:]
	return n, nil
}

func (t *stubTransport) Write(p []byte) (int, error) {
	if t.wlimit > 0 && len(p) > t.wlimit {
		p = p[:t.wlimit]
	}
	return t.out.Write(p)
}

func (t *stubTransport) Connected() bool { return !t.down }

func (t *stubTransport) Close() error {
	t.down = true
	t.closed++
	return nil
}

// frames returns frames written to the transport with unmasked payloads.
func (t *stubTransport) frames(tb testing.TB) []ws.Frame {
	tb.Helper()
	var ret []ws.Frame
	r := bytes.NewReader(t.out.Bytes())
	for {
		f, err := ws.ReadFrame(r)
		if err == io.EOF {
			return ret
		}
		if err != nil {
			tb.Fatalf("can not read written frame: %v", err)
		}
		if f.Header.Masked {
			ws.Cipher(f.Payload, f.Header.Mask, 0)
		}
		ret = append(ret, f)
	}
}

type testEnv struct {
	conn  *Conn
	tr    *stubTransport
	clk   *fakeclock.FakeClock
	msgs  *MessageQueue
	hook  *logtest.Hook
	cfg   *Config
	close []error
}

// newTestEnv creates connected Conn over stubTransport. Yield advances the
// fake clock by one second unless cfg has its own Yield.
func newTestEnv(tb testing.TB, role Role, cfg *Config) *testEnv {
	tb.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.InfoLevel)

	e := &testEnv{
		tr:   &stubTransport{},
		clk:  fakeclock.NewFakeClock(time.Unix(1700000000, 0)),
		msgs: NewMessageQueue(),
		hook: hook,
		cfg:  cfg,
	}
	cfg.Clock = e.clk
	cfg.Logger = log
	if cfg.Yield == nil {
		cfg.Yield = func() { e.clk.Increment(time.Second) }
	}
	onClose := cfg.OnClose
	cfg.OnClose = func(c *Conn, err error) {
		e.close = append(e.close, err)
		if onClose != nil {
			onClose(c, err)
		}
	}

	e.conn = NewConn(e.tr, role, e.msgs, cfg)
	if err := e.conn.HeaderDone(); err != nil {
		tb.Fatal(err)
	}
	return e
}

func compile(tb testing.TB, f ws.Frame) []byte {
	tb.Helper()
	p, err := ws.CompileFrame(f)
	if err != nil {
		tb.Fatal(err)
	}
	return p
}

// clientFrame returns bytes of a frame sent by client, that is, masked.
func clientFrame(tb testing.TB, op ws.OpCode, p []byte) []byte {
	return compile(tb, ws.MaskFrameWith(ws.NewFrame(op, true, p), [4]byte{0x37, 0xfa, 0x21, 0x3d}))
}

func assertCloseFrame(tb testing.TB, f ws.Frame, code ws.StatusCode) {
	tb.Helper()
	if f.Header.OpCode != ws.OpClose {
		tb.Fatalf("unexpected frame op code: %s; want %s", f.Header.OpCode, ws.OpClose)
	}
	if act, _ := ws.ParseCloseFrameData(f.Payload); act != code {
		tb.Errorf("unexpected close frame code: %d; want %d", act, code)
	}
}
