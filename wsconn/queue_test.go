package wsconn

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/embedws/ws"
)

func TestMessageQueue(t *testing.T) {
	for _, test := range []struct {
		label string
		data  bool
		exp   []Message
	}{
		{
			label: "all",
			exp: []Message{
				{OpCode: ws.OpText, Payload: []byte("first"), Fin: false},
				{OpCode: ws.OpPing, Payload: []byte("ping"), Fin: true},
				{OpCode: ws.OpContinuation, Payload: []byte("second"), Fin: true},
			},
		},
		{
			label: "data",
			data:  true,
			exp: []Message{
				{OpCode: ws.OpText, Payload: []byte("first"), Fin: false},
				{OpCode: ws.OpContinuation, Payload: []byte("second"), Fin: true},
			},
		},
	} {
		t.Run(test.label, func(t *testing.T) {
			q := NewMessageQueue()
			q.Data = test.data

			buf := []byte("first")
			q.OnMessage(nil, ws.OpText, buf, false)
			copy(buf, "xxxxx")
			q.OnMessage(nil, ws.OpPing, []byte("ping"), true)
			q.OnMessage(nil, ws.OpContinuation, []byte("second"), true)

			if n := q.Len(); n != len(test.exp) {
				t.Fatalf("unexpected length: %d; want %d", n, len(test.exp))
			}
			var act []Message
			for {
				msg, ok := q.Pop()
				if !ok {
					break
				}
				act = append(act, msg)
			}
			if diff := cmp.Diff(test.exp, act); diff != "" {
				t.Errorf("unexpected messages (-want +got):\n%s", diff)
			}
		})
	}
}
