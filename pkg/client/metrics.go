package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one client instance.
// A nil *Metrics is valid and records nothing, so instrumentation stays
// optional for embedders and tests.
type Metrics struct {
	messagesReceived *prometheus.CounterVec
	framesDropped    prometheus.Counter
	reconnects       prometheus.Counter
	connectionState  prometheus.Gauge
	commandsSent     *prometheus.CounterVec
	commandsFailed   *prometheus.CounterVec
	heartbeatRTT     prometheus.Histogram
}

// NewMetrics registers the client metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		messagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cityflow",
			Name:      "messages_received_total",
			Help:      "Inbound feed messages by recognized kind.",
		}, []string{"kind"}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cityflow",
			Name:      "frames_dropped_total",
			Help:      "Inbound frames dropped as malformed or unrecognized.",
		}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cityflow",
			Name:      "reconnect_attempts_total",
			Help:      "Scheduled reconnection attempts.",
		}),
		connectionState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cityflow",
			Name:      "connection_state",
			Help:      "Connection lifecycle state (0 disconnected, 1 connecting, 2 connected, 3 error).",
		}),
		commandsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cityflow",
			Name:      "commands_sent_total",
			Help:      "Outbound commands transmitted, by kind.",
		}, []string{"kind"}),
		commandsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cityflow",
			Name:      "commands_failed_total",
			Help:      "Outbound commands dropped because the client was not connected.",
		}, []string{"kind"}),
		heartbeatRTT: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cityflow",
			Name:      "heartbeat_rtt_seconds",
			Help:      "Round-trip time between ping and pong.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) messageReceived(kind string) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(kind).Inc()
}

func (m *Metrics) frameDropped() {
	if m == nil {
		return
	}
	m.framesDropped.Inc()
}

func (m *Metrics) reconnectScheduled() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) statusChanged(s Status) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(s))
}

func (m *Metrics) commandSent(kind string) {
	if m == nil {
		return
	}
	m.commandsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) commandFailed(kind string) {
	if m == nil {
		return
	}
	m.commandsFailed.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeHeartbeat(rtt time.Duration) {
	if m == nil {
		return
	}
	m.heartbeatRTT.Observe(rtt.Seconds())
}

// MessageReceived records one recognized inbound message.
func (m *Metrics) MessageReceived(kind string) { m.messageReceived(kind) }

// FrameDropped records one dropped inbound frame.
func (m *Metrics) FrameDropped() { m.frameDropped() }
