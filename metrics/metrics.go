package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logcast"

var (
	// ConnectedClients is the size of the client registry
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_clients",
		Help:      "subscribers currently registered.",
	})
	// AlertsTotal counts keyword matches broadcast
	AlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "keyword alerts broadcast.",
	})
	// HeartbeatsTotal counts heartbeat passes
	HeartbeatsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "heartbeats_total",
		Help:      "heartbeat passes broadcast.",
	})
	// MessagesSent counts successful per-client sends
	MessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "messages written to subscribers.",
	}, []string{"kind"})
	// SendFailures counts failed per-client sends
	SendFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "send_failures_total",
		Help:      "failed writes to subscribers.",
	}, []string{"kind"})
	// ClientsPruned counts clients removed after a failed send
	ClientsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_pruned_total",
		Help:      "subscribers removed after a failed send.",
	})
	// HandshakeFailures counts failed tls handshakes
	HandshakeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshake_failures_total",
		Help:      "tls handshakes that failed.",
	})
	// LinesRead counts lines read from the watched file
	LinesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_read_total",
		Help:      "lines read from the watched file.",
	})
	// FileReopens counts (re)opens of the watched file
	FileReopens = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_reopens_total",
		Help:      "opens of the watched file, including rotations and truncations.",
	})
)

func init() { //nolint
	prometheus.MustRegister(
		ConnectedClients, AlertsTotal, HeartbeatsTotal,
		MessagesSent, SendFailures, ClientsPruned,
		HandshakeFailures, LinesRead, FileReopens,
	)
}
