package service

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSnapshot is a flattened view of the run metrics for logging.
type MetricsSnapshot struct {
	Steps                    map[string]time.Duration
	RowsWritten              map[string]float64
	DBQueryCount             uint64
	AverageDBQueryDurationMs float64
}

// MetricsService encapsulates Prometheus instrumentation for a demo run.
type MetricsService struct {
	registry        *prometheus.Registry
	stepDuration    *prometheus.GaugeVec
	rowsWritten     *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers the run collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	stepDuration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "demo_step_duration_seconds",
		Help: "Wall time of each provisioning, seeding and reporting step",
	}, []string{"step"})

	rowsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "demo_rows_written_total",
		Help: "Rows inserted per table",
	}, []string{"table"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	registry.MustRegister(stepDuration, rowsWritten, dbQueryDuration)

	return &MetricsService{
		registry:        registry,
		stepDuration:    stepDuration,
		rowsWritten:     rowsWritten,
		dbQueryDuration: dbQueryDuration,
	}
}

// ObserveStep records how long a named step took.
func (m *MetricsService) ObserveStep(step string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Set(duration.Seconds())
}

// AddRows counts inserted rows for a table.
func (m *MetricsService) AddRows(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.WithLabelValues(table).Add(float64(n))
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// Snapshot gathers the registry into a MetricsSnapshot.
func (m *MetricsService) Snapshot() (MetricsSnapshot, error) {
	snap := MetricsSnapshot{Steps: map[string]time.Duration{}, RowsWritten: map[string]float64{}}
	if m == nil {
		return snap, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return snap, err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			label := ""
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				label = pairs[0].GetValue()
			}
			switch family.GetName() {
			case "demo_step_duration_seconds":
				snap.Steps[label] = time.Duration(metric.GetGauge().GetValue() * float64(time.Second))
			case "demo_rows_written_total":
				snap.RowsWritten[label] = metric.GetCounter().GetValue()
			}
		}
	}

	count := atomic.LoadUint64(&m.dbQueryCount)
	snap.DBQueryCount = count
	if count > 0 {
		total := atomic.LoadUint64(&m.dbQueryDurationTotal)
		snap.AverageDBQueryDurationMs = float64(total) / float64(count) / float64(time.Millisecond)
	}
	return snap, nil
}

// StepNames returns the recorded step labels sorted for stable logging.
func (s MetricsSnapshot) StepNames() []string {
	names := make([]string, 0, len(s.Steps))
	for name := range s.Steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
