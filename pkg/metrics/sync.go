package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records metadata for catalog sync runs.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	items    *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_sync_duration_seconds",
		Help:    "Duration of catalog sync runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_success",
		Help: "Successful catalog sync runs.",
	}, []string{"source"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_failure",
		Help: "Failed catalog sync runs.",
	}, []string{"source"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_items_total",
		Help: "Catalog records seen by sync runs, split by outcome.",
	}, []string{"source", "outcome"})
	reg.MustRegister(duration, success, failure, items)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		items:    items,
	}
}

// ObserveDuration records the duration for the named feed source.
func (s *SyncMetrics) ObserveDuration(source string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named feed source.
func (s *SyncMetrics) IncSuccess(source string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailure increments the failure counter for the named feed source.
func (s *SyncMetrics) IncFailure(source string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(source)).Inc()
}

// AddItems counts synced records under the given outcome ("new" or "skipped").
func (s *SyncMetrics) AddItems(source, outcome string, count int) {
	if s == nil || s.items == nil || count <= 0 {
		return
	}
	s.items.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
