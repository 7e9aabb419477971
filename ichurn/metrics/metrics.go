// Package metrics exposes churn run counters in prometheus format.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/pinpt/ichurn/ichurn/churn"
	"github.com/pinpt/ichurn/ichurn/hunk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure kinds used for the kind label of ichurn_unit_failures_total.
const (
	KindMalformedHeader = "malformed_header"
	KindLookupFailed    = "lookup_failed"
	KindGit             = "git"
)

// Metrics holds the collectors of one run. Each instance uses its own registry.
type Metrics struct {
	registry *prometheus.Registry

	units    prometheus.Counter
	failures *prometheus.CounterVec
	lines    *prometheus.CounterVec
	blame    prometheus.Histogram
}

func New() *Metrics {
	s := &Metrics{}
	s.registry = prometheus.NewRegistry()
	s.units = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ichurn_units_total",
		Help: "Number of (revision, file) units processed.",
	})
	s.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ichurn_unit_failures_total",
		Help: "Number of failed units by failure kind.",
	}, []string{"kind"})
	s.lines = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ichurn_lines_total",
		Help: "Churned lines by kind.",
	}, []string{"kind"})
	s.blame = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ichurn_blame_seconds",
		Help:    "Duration of authorship lookups.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})
	s.registry.MustRegister(s.units, s.failures, s.lines, s.blame)
	return s
}

// Registry returns the underlying registry, for tests and custom exporters.
func (s *Metrics) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the prometheus text format.
func (s *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveLookup implements churn.Observer.
func (s *Metrics) ObserveLookup(d time.Duration, err error) {
	s.blame.Observe(d.Seconds())
}

// ObserveRecord counts a successful unit.
func (s *Metrics) ObserveRecord(rec churn.Record) {
	s.units.Inc()
	s.lines.WithLabelValues("added").Add(float64(rec.LinesAdded))
	s.lines.WithLabelValues("deleted_self").Add(float64(rec.LinesDeletedSelf))
	s.lines.WithLabelValues("deleted_other").Add(float64(rec.LinesDeletedOther))
}

// ObserveFailure counts a failed unit.
func (s *Metrics) ObserveFailure(err error) {
	s.units.Inc()
	s.failures.WithLabelValues(FailureKind(err)).Inc()
}

// FailureKind maps a unit error to its metrics label.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, hunk.ErrMalformedHeader):
		return KindMalformedHeader
	case errors.Is(err, churn.ErrAuthorshipLookupFailed):
		return KindLookupFailed
	}
	return KindGit
}
