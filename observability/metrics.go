package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the per-scheduler Prometheus collectors described in
// spec §4.6's expansion: ticks and tick duration and deadline misses,
// all labeled by node name. Registered against a caller-supplied
// Registerer (never prometheus.DefaultRegisterer), so multiple
// schedulers in one process never collide on metric names (spec §9's
// open question on multiple schedulers per process).
type Metrics struct {
	Ticks          *prometheus.CounterVec
	TickDuration   *prometheus.HistogramVec
	DeadlineMisses *prometheus.CounterVec
}

// NewMetrics registers the scheduler's collectors under namespace
// "horus" and subsystem "scheduler_<name>" against reg, with every
// character of name that is not a letter, digit, or '_' replaced by '_'
// so that the result is a valid metric name.
func NewMetrics(reg prometheus.Registerer, schedulerName string) *Metrics {
	subsystem := "scheduler_" + strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, schedulerName)
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horus",
			Subsystem: subsystem,
			Name:      "node_ticks_total",
			Help:      "Total number of ticks executed per node.",
		}, []string{"node"}),
		TickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "horus",
			Subsystem: subsystem,
			Name:      "node_tick_duration_seconds",
			Help:      "Tick duration per node.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 2, 20),
		}, []string{"node"}),
		DeadlineMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horus",
			Subsystem: subsystem,
			Name:      "node_deadline_misses_total",
			Help:      "Total number of deadline misses per node.",
		}, []string{"node"}),
	}
	reg.MustRegister(m.Ticks, m.TickDuration, m.DeadlineMisses)
	return m
}
