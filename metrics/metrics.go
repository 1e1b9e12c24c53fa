// Package metrics holds the Prometheus collectors for the catalog pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toolkit"

// Fetch sources, used as the "source" label of FetchTotal.
const (
	SourceNetwork = "network"
	SourceCache   = "cache"
	SourceStale   = "stale"
	SourceError   = "error"
)

// Submission outcomes, used as the "outcome" label of Submissions.
const (
	SubmissionSent    = "sent"
	SubmissionInvalid = "invalid"
	SubmissionFailed  = "failed"
	SubmissionLimited = "limited"
)

// Metrics holds all catalog collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchTotal     *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RowsSkipped    prometheus.Counter
	DuplicateIDs   prometheus.Counter
	ItemsLoaded    prometheus.Gauge
	LoadsDiscarded prometheus.Counter
	Submissions    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. When reg is nil the collectors are
// created but not registered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		FetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_total",
			Help:      "CSV fetches by where the rows came from.",
		}, []string{"source"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent retrieving and parsing the CSV feed over the network.",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "rows_skipped_total",
			Help:      "Malformed CSV rows skipped during parsing.",
		}),
		DuplicateIDs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "duplicate_ids_total",
			Help:      "Item ids rewritten because an earlier row used the same id.",
		}),
		ItemsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "items",
			Help:      "Items in the current catalog snapshot.",
		}),
		LoadsDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_discarded_total",
			Help:      "Loads that finished after a newer load had been applied.",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submission",
			Name:      "total",
			Help:      "Resource submissions by outcome.",
		}, []string{"outcome"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveFetch records one fetch and, for network fetches, its duration.
func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source).Inc()
	if source == SourceNetwork {
		m.FetchDuration.Observe(d.Seconds())
	}
}

// AddSkippedRows counts malformed rows dropped by the parser.
func (m *Metrics) AddSkippedRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsSkipped.Add(float64(n))
}

// AddDuplicateIDs counts ids rewritten during de-duplication.
func (m *Metrics) AddDuplicateIDs(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DuplicateIDs.Add(float64(n))
}

// SetItems records the size of the active snapshot.
func (m *Metrics) SetItems(n int) {
	if m == nil {
		return
	}
	m.ItemsLoaded.Set(float64(n))
}

// LoadDiscarded counts an out-of-order load result.
func (m *Metrics) LoadDiscarded() {
	if m == nil {
		return
	}
	m.LoadsDiscarded.Inc()
}

// Submission counts a submission attempt by outcome.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry the collectors were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
