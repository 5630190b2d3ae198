package qsim

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

// Metrics tracks execution counters and shot latency. The exported fields
// are a snapshot guarded by mu; P95ShotLatency and P99ShotLatency refresh on
// ExportMetrics. The Prometheus collectors mirror the counters for scraping
// once Register has been called.
type Metrics struct {
	mu            sync.RWMutex
	ShotCount     int64
	FailedShots   int64
	GatesApplied  int64
	GatesSkipped  int64
	Measurements  int64
	TotalShotTime time.Duration

	AverageShotLatency time.Duration
	P95ShotLatency     time.Duration
	P99ShotLatency     time.Duration
	ShotSuccessRate    float64

	latencyWindows []timeWindow
	windowSize     int

	shots        *prometheus.CounterVec
	gateSteps    *prometheus.CounterVec
	measurements prometheus.Counter
	latency      prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000), // Store last 1000 measurements
		windowSize:     1000,
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qsim",
			Name:      "shots_total",
			Help:      "Circuit executions by result.",
		}, []string{"result"}),
		gateSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qsim",
			Name:      "gate_steps_total",
			Help:      "Gate steps by whether their classical condition let them run.",
		}, []string{"outcome"}),
		measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qsim",
			Name:      "measurements_total",
			Help:      "Measurement, reset and peek steps executed.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qsim",
			Name:      "shot_duration_seconds",
			Help:      "Wall time of a single circuit execution.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

// Register exposes the collectors on reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.shots, m.gateSteps, m.measurements, m.latency} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) recordShot(startTime time.Time, stats RunStats, success bool) {
	duration := time.Since(startTime)

	result := "ok"
	if !success {
		result = "error"
	}
	m.shots.WithLabelValues(result).Inc()
	m.gateSteps.WithLabelValues("applied").Add(float64(stats.GatesApplied))
	m.gateSteps.WithLabelValues("skipped").Add(float64(stats.GatesSkipped))
	m.measurements.Add(float64(stats.Measurements))
	m.latency.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ShotCount++
	if !success {
		m.FailedShots++
	}
	m.GatesApplied += int64(stats.GatesApplied)
	m.GatesSkipped += int64(stats.GatesSkipped)
	m.Measurements += int64(stats.Measurements)
	m.TotalShotTime += duration
	m.ShotSuccessRate = float64(m.ShotCount-m.FailedShots) / float64(m.ShotCount)
	m.AverageShotLatency = (m.AverageShotLatency*time.Duration(m.ShotCount-1) + duration) / time.Duration(m.ShotCount)

	m.latencyWindows = append(m.latencyWindows, timeWindow{
		duration: duration,
		count:    1,
	})

	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}
}

// updateLatencyPercentiles refreshes P95 and P99 from the window. Callers
// hold mu for writing.
func (m *Metrics) updateLatencyPercentiles() {
	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.P95ShotLatency = sorted[p95Index]
		m.P99ShotLatency = sorted[p99Index]
	}
}

// ExportMetrics returns a flat snapshot for reporting front-ends. The
// latency percentiles are computed here rather than on every shot.
func (m *Metrics) ExportMetrics() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateLatencyPercentiles()

	return map[string]any{
		"shot_count":    m.ShotCount,
		"failed_shots":  m.FailedShots,
		"gates_applied": m.GatesApplied,
		"gates_skipped": m.GatesSkipped,
		"measurements":  m.Measurements,
		"success_rate":  m.ShotSuccessRate,
		"avg_latency":   m.AverageShotLatency.Microseconds(),
		"p95_latency":   m.P95ShotLatency.Microseconds(),
		"p99_latency":   m.P99ShotLatency.Microseconds(),
	}
}
