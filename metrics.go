package folio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "folio"

type metrics struct {
	cacheRequests *prometheus.CounterVec
	revalidations *prometheus.CounterVec
	thumbnails    *prometheus.CounterVec
}

// newMetrics registers the app's collectors, plus the Go and process
// collectors, on reg.
func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		cacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "content_cache",
				Name:      "requests_total",
				Help:      "Content lookups by operation and cache result",
			},
			[]string{"op", "result"},
		),
		revalidations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "revalidations_total",
				Help:      "Revalidation requests by outcome",
			},
			[]string{"outcome"},
		),
		thumbnails: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "thumbnails_total",
				Help:      "Thumbnail requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}
