package wsconn

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/embedws/ws"
)

// Metrics contains counters updated by connections. All methods are safe
// to call on nil Metrics.
type Metrics struct {
	FramesReceived    *prometheus.CounterVec
	FramesSent        *prometheus.CounterVec
	Closes            *prometheus.CounterVec
	HeartbeatTimeouts prometheus.Counter
}

// NewMetrics creates metrics within given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "frames_received_total",
			Help:      "Number of received frames by op code.",
		}, []string{"opcode"}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "frames_sent_total",
			Help:      "Number of sent frames by op code.",
		}, []string{"opcode"}),
		Closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "closes_total",
			Help:      "Number of closed connections by status code.",
		}, []string{"code"}),
		HeartbeatTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "heartbeat_timeouts_total",
			Help:      "Number of pongs not received in time.",
		}),
	}
}

// Register registers all counters with r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.FramesReceived,
		m.FramesSent,
		m.Closes,
		m.HeartbeatTimeouts,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) received(op ws.OpCode) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) sent(op ws.OpCode) {
	if m == nil {
		return
	}
	m.FramesSent.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) closed(code ws.StatusCode) {
	if m == nil {
		return
	}
	m.Closes.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *Metrics) heartbeatTimeout() {
	if m == nil {
		return
	}
	m.HeartbeatTimeouts.Inc()
}
