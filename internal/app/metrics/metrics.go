// Package metrics exposes Prometheus collectors for the listeners and the relay
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inspectd/internal/app/packet"
	"inspectd/internal/config"
)

// Recorder records listener and relay activity
type Recorder interface {
	PacketReceived(transport string, t packet.Type)
	DecodeFailed(transport string)
	ClientConnected(transport string)
	ClientDisconnected(transport string)
	ListenerError(transport string)
	EventDropped(event string)
	RelayAccepted(n int)
	RelayRejected(n int)
	RelayForwarded()
	RelayDropped()
	RelayBuffered(n int)
	RelayConnected(connected bool)
	RelayReconnect(success bool)
	Handler() http.Handler
}

type recorder struct {
	registry       *prometheus.Registry
	packets        *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	clients        *prometheus.GaugeVec
	connections    *prometheus.CounterVec
	errors         *prometheus.CounterVec
	eventsDropped  *prometheus.CounterVec
	relayRequests  *prometheus.CounterVec
	relayForwarded prometheus.Counter
	relayDropped   prometheus.Counter
	relayBuffered  prometheus.Gauge
	relayConnected prometheus.Gauge
	relayReconnect *prometheus.CounterVec
}

// New creates a recorder backed by its own registry
func New() Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	namespace := config.AppName

	return &recorder{
		registry: registry,
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Packets decoded per transport and packet type",
		}, []string{"transport", "type"}),
		decodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Frames or messages that could not be decoded",
		}, []string{"transport"}),
		clients: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients",
			Help:      "Currently connected clients",
		}, []string{"transport"}),
		connections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections",
		}, []string{"transport"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_errors_total",
			Help:      "Errors reported by listeners",
		}, []string{"transport"}),
		eventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Listener events a slow consumer missed",
		}, []string{"event"}),
		relayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Messages received over HTTP by outcome",
		}, []string{"outcome"}),
		relayForwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "forwarded_total",
			Help:      "Messages delivered to the target",
		}),
		relayDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "dropped_total",
			Help:      "Buffered messages evicted because the buffer was full",
		}),
		relayBuffered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "buffered",
			Help:      "Messages waiting for the target to come back",
		}),
		relayConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "connected",
			Help:      "1 while the relay is connected to its target",
		}),
		relayReconnect: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts by result",
		}, []string{"result"}),
	}
}

func (r *recorder) PacketReceived(transport string, t packet.Type) {
	r.packets.WithLabelValues(transport, t.String()).Inc()
}

func (r *recorder) DecodeFailed(transport string) {
	r.decodeFailures.WithLabelValues(transport).Inc()
}

func (r *recorder) ClientConnected(transport string) {
	r.connections.WithLabelValues(transport).Inc()
	r.clients.WithLabelValues(transport).Inc()
}

func (r *recorder) ClientDisconnected(transport string) {
	r.clients.WithLabelValues(transport).Dec()
}

func (r *recorder) ListenerError(transport string) {
	r.errors.WithLabelValues(transport).Inc()
}

func (r *recorder) EventDropped(event string) {
	r.eventsDropped.WithLabelValues(event).Inc()
}

func (r *recorder) RelayAccepted(n int) {
	r.relayRequests.WithLabelValues("accepted").Add(float64(n))
}

func (r *recorder) RelayRejected(n int) {
	r.relayRequests.WithLabelValues("rejected").Add(float64(n))
}

func (r *recorder) RelayForwarded() {
	r.relayForwarded.Inc()
}

func (r *recorder) RelayDropped() {
	r.relayDropped.Inc()
}

func (r *recorder) RelayBuffered(n int) {
	r.relayBuffered.Set(float64(n))
}

func (r *recorder) RelayConnected(connected bool) {
	if connected {
		r.relayConnected.Set(1)
		return
	}

	r.relayConnected.Set(0)
}

func (r *recorder) RelayReconnect(success bool) {
	result := "failure"
	if success {
		result = "success"
	}

	r.relayReconnect.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// NoOp returns a recorder that discards everything
func NoOp() Recorder {
	return noOpRecorder{}
}

type noOpRecorder struct{}

func (noOpRecorder) PacketReceived(string, packet.Type) {}
func (noOpRecorder) DecodeFailed(string)                {}
func (noOpRecorder) ClientConnected(string)             {}
func (noOpRecorder) ClientDisconnected(string)          {}
func (noOpRecorder) ListenerError(string)               {}
func (noOpRecorder) EventDropped(string)                {}
func (noOpRecorder) RelayAccepted(int)                  {}
func (noOpRecorder) RelayRejected(int)                  {}
func (noOpRecorder) RelayForwarded()                    {}
func (noOpRecorder) RelayDropped()                      {}
func (noOpRecorder) RelayBuffered(int)                  {}
func (noOpRecorder) RelayConnected(bool)                {}
func (noOpRecorder) RelayReconnect(bool)                {}

func (noOpRecorder) Handler() http.Handler {
	return http.NotFoundHandler()
}
