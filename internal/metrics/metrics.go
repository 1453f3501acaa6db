package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingest exposes ingestion counters. A nil *Ingest is valid and records
// nothing, so callers never have to branch on whether metrics are wired.
type Ingest struct {
	saved        prometheus.Counter
	failed       prometheus.Counter
	coerced      prometheus.Counter
	runs         *prometheus.CounterVec
	batchSeconds prometheus.Histogram
}

// NewIngest registers the ingestion metrics against the given registerer.
func NewIngest(reg prometheus.Registerer) *Ingest {
	m := &Ingest{
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetsync_records_saved_total",
			Help: "Telematics records committed to storage.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetsync_records_failed_total",
			Help: "Telematics records rejected or rolled back.",
		}),
		coerced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetsync_field_fallbacks_total",
			Help: "Field values that resolved to a coercion fallback.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetsync_ingest_runs_total",
			Help: "Ingestion runs by final status.",
		}, []string{"status"}),
		batchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetsync_batch_commit_seconds",
			Help:    "Duration of batch commit transactions.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.saved, m.failed, m.coerced, m.runs, m.batchSeconds)
	return m
}

// AddSaved counts committed records.
func (m *Ingest) AddSaved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.saved.Add(float64(n))
}

// AddFailed counts rejected or rolled-back records.
func (m *Ingest) AddFailed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.failed.Add(float64(n))
}

// AddCoerced counts field-level fallback substitutions.
func (m *Ingest) AddCoerced(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.coerced.Add(float64(n))
}

// RunFinished counts a run under its final processing status.
func (m *Ingest) RunFinished(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

// BatchTimer starts timing a batch commit; the returned func observes the
// elapsed duration.
func (m *Ingest) BatchTimer() func() {
	if m == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.batchSeconds)
	return func() { timer.ObserveDuration() }
}
