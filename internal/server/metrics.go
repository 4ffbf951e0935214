package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/morozRed/bit/internal/report"
)

type metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	analyses        *prometheus.CounterVec
	modified        prometheus.Gauge
	issues          *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bit",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome (ok, error)",
		}, []string{"outcome"}),
		modified: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bit",
			Subsystem: "analysis",
			Name:      "modified_functions",
			Help:      "Modified functions found by the most recent successful run",
		}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bit",
			Subsystem: "analysis",
			Name:      "file_issues_total",
			Help:      "Per-file issues recorded during analysis, by kind",
		}, []string{"kind"}),
	}
}

func (m *metrics) observeReport(r *report.Report) {
	m.analyses.WithLabelValues("ok").Inc()
	m.modified.Set(float64(len(r.Entries)))
	for _, is := range r.Issues {
		m.issues.WithLabelValues(string(is.Kind)).Inc()
	}
}
