package wsconn

import (
	"testing"

	"github.com/embedws/ws"
)

func TestDispatchPing(t *testing.T) {
	e := newTestEnv(t, RoleServer, nil)
	e.tr.push(clientFrame(t, ws.OpPing, []byte("hi"))...)

	if err := e.conn.Handle(); err != nil {
		t.Fatal(err)
	}

	frames := e.tr.frames(t)
	if len(frames) != 1 {
		t.Fatalf("unexpected number of sent frames: %d; want 1", len(frames))
	}
	if f := frames[0]; f.Header.OpCode != ws.OpPong || string(f.Payload) != "hi" || f.Header.Masked {
		t.Errorf("unexpected frame sent: %+v %q", f.Header, f.Payload)
	}

	if n := e.msgs.Len(); n != 1 {
		t.Fatalf("unexpected number of delivered messages: %d; want 1", n)
	}
	msg, _ := e.msgs.Pop()
	if msg.OpCode != ws.OpPing || string(msg.Payload) != "hi" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestDispatchPong(t *testing.T) {
	e := newTestEnv(t, RoleServer, nil)
	e.tr.push(clientFrame(t, ws.OpPong, nil)...)

	if err := e.conn.Handle(); err != nil {
		t.Fatal(err)
	}
	if !e.conn.hb.pongReceived {
		t.Errorf("pong is not registered")
	}
	if e.tr.out.Len() != 0 {
		t.Errorf("unexpected bytes sent on pong: %d", e.tr.out.Len())
	}
	if msg, ok := e.msgs.Pop(); !ok || msg.OpCode != ws.OpPong {
		t.Errorf("unexpected message: %v %+v", ok, msg)
	}
}

func TestDispatchClose(t *testing.T) {
	for _, test := range []struct {
		label  string
		body   []byte
		code   ws.StatusCode
		reason string
	}{
		{
			label: "normal",
			body:  []byte{0x03, 0xe8},
			code:  ws.StatusNormalClosure,
		},
		{
			label:  "going away",
			body:   ws.NewCloseFrameBody(ws.StatusGoingAway, "bye"),
			code:   ws.StatusGoingAway,
			reason: "bye",
		},
		{
			label: "empty",
		},
	} {
		t.Run(test.label, func(t *testing.T) {
			e := newTestEnv(t, RoleServer, nil)
			e.tr.push(clientFrame(t, ws.OpClose, test.body)...)

			err := e.conn.Handle()
			exp := ClosedError{Code: test.code, Reason: test.reason}
			if err != exp {
				t.Fatalf("unexpected error: %v; want %v", err, exp)
			}
			if e.conn.Status() != StatusClosed {
				t.Errorf("unexpected status: %s", e.conn.Status())
			}
			if act := e.conn.PeerCloseCode(); act != test.code {
				t.Errorf("unexpected peer close code: %d; want %d", act, test.code)
			}

			frames := e.tr.frames(t)
			if len(frames) != 1 {
				t.Fatalf("unexpected number of sent frames: %d; want 1", len(frames))
			}
			assertCloseFrame(t, frames[0], ws.StatusNormalClosure)

			if e.tr.closed != 1 {
				t.Errorf("transport closed %d times; want 1", e.tr.closed)
			}
			if len(e.close) != 1 || e.close[0] != exp {
				t.Errorf("unexpected OnClose calls: %v", e.close)
			}
			if e.msgs.Len() != 0 {
				t.Errorf("close frame delivered to handler")
			}
		})
	}
}

func TestDispatchHandlerFunc(t *testing.T) {
	var (
		calls int
		conn  *Conn
	)
	h := HandlerFunc(func(c *Conn, op ws.OpCode, p []byte, fin bool) {
		calls++
		conn = c
		if op != ws.OpBinary || string(p) != "data" || fin {
			t.Errorf("unexpected message: %s %q %v", op, p, fin)
		}
	})
	tr := &stubTransport{}
	tr.push(compile(t, ws.MaskFrameWith(ws.NewFrame(ws.OpBinary, false, []byte("data")), ws.NewMask()))...)

	c := NewConn(tr, RoleServer, h, nil)
	if err := c.HeaderDone(); err != nil {
		t.Fatal(err)
	}
	if err := c.Handle(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 || conn != c {
		t.Errorf("unexpected handler calls: %d (%p vs %p)", calls, conn, c)
	}
}

func TestDispatchCloseStrict(t *testing.T) {
	for _, test := range []struct {
		label  string
		strict bool
		body   []byte
		code   ws.StatusCode
	}{
		{
			label:  "reserved code",
			strict: true,
			body:   []byte{0x03, 0xed}, // 1005.
			code:   ws.StatusProtocolError,
		},
		{
			label:  "invalid reason",
			strict: true,
			body:   []byte{0x03, 0xe8, 0xff},
			code:   ws.StatusProtocolError,
		},
		{
			label:  "valid code",
			strict: true,
			body:   []byte{0x03, 0xe9},
			code:   ws.StatusNormalClosure,
		},
		{
			label:  "empty body",
			strict: true,
			code:   ws.StatusNormalClosure,
		},
		{
			label: "reserved code permissive",
			body:  []byte{0x03, 0xed},
			code:  ws.StatusNormalClosure,
		},
	} {
		t.Run(test.label, func(t *testing.T) {
			e := newTestEnv(t, RoleServer, &Config{Strict: test.strict})
			e.tr.push(clientFrame(t, ws.OpClose, test.body)...)

			err := e.conn.Handle()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if e.conn.Status() != StatusClosed {
				t.Errorf("unexpected status: %s", e.conn.Status())
			}
			frames := e.tr.frames(t)
			if len(frames) != 1 {
				t.Fatalf("unexpected number of sent frames: %d; want 1", len(frames))
			}
			assertCloseFrame(t, frames[0], test.code)

			_, isClose := err.(CloseError)
			if exp := test.code == ws.StatusProtocolError; isClose != exp {
				t.Errorf("unexpected error: %#v", err)
			}
		})
	}
}
