package wsconn

import (
	"github.com/eapache/queue"

	"github.com/embedws/ws"
)

// Message is a frame delivered to MessageQueue.
type Message struct {
	OpCode  ws.OpCode
	Payload []byte
	Fin     bool
}

// MessageQueue is a Handler which stores copies of delivered frames in FIFO
// order. It lets frames be consumed after Handle returns.
//
// Note that MessageQueue is not goroutine safe.
type MessageQueue struct {
	// Data makes queue keep only data frames (text, binary and
	// continuation).
	Data bool

	q *queue.Queue
}

// NewMessageQueue creates empty queue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{q: queue.New()}
}

// OnMessage implements Handler.
func (m *MessageQueue) OnMessage(_ *Conn, op ws.OpCode, payload []byte, fin bool) {
	if m.Data && op.IsControl() {
		return
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	m.q.Add(Message{
		OpCode:  op,
		Payload: p,
		Fin:     fin,
	})
}

// Len returns number of queued messages.
func (m *MessageQueue) Len() int {
	return m.q.Length()
}

// Pop removes and returns the oldest message. It returns false when the
// queue is empty.
func (m *MessageQueue) Pop() (msg Message, ok bool) {
	if m.q.Length() == 0 {
		return msg, false
	}
	return m.q.Remove().(Message), true
}
