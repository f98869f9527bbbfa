// Package metrics holds the gateway's Prometheus collectors. They register
// with the default registry so promhttp.Handler exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_http_requests_total",
			Help: "HTTP requests by endpoint, method, and status.",
		},
		[]string{"endpoint", "method", "status"},
	)

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_upstream_requests_total",
			Help: "Weather provider calls by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	ReadingsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_readings_published_total",
			Help: "Synthetic readings handed to the broker, by outcome.",
		},
		[]string{"outcome"},
	)

	ReadingsRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherdash_readings_relayed_total",
			Help: "Broker messages fanned out to connected clients.",
		},
	)

	ReadingsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherdash_readings_dropped_total",
			Help: "Broker messages skipped because they did not decode or validate.",
		},
	)

	Connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherdash_realtime_connections",
			Help: "Open persistent client connections.",
		},
	)

	BrokerConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherdash_broker_connected",
			Help: "1 while the telemetry broker session is up.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		UpstreamRequests,
		ReadingsPublished,
		ReadingsRelayed,
		ReadingsDropped,
		Connections,
		BrokerConnected,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
