package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

func init() {
	metrics.Registry.MustRegister(
		requestsTotal,
		requestDuration,
		recreateTotal,
	)
}

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kmanage_gateway_requests_total",
			Help: "Total number of gateway requests per route",
		},
		[]string{"route", "code", "method"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kmanage_gateway_request_duration_seconds",
			Help:    "Duration of gateway requests per route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code", "method"},
	)
	recreateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kmanage_gateway_updates_total",
			Help: "Total number of manifest updates per kind and result",
		},
		[]string{"kind", "result"},
	)
)

// instrument counts and times h under route.
func instrument(route string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(requestDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(requestsTotal.MustCurryWith(labels), h))
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
