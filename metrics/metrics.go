// Package metrics exposes Prometheus collectors for power mode activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Edit outcomes recorded by ObserveEdit
const (
	OutcomeDisabled   = "disabled"
	OutcomeSuppressed = "suppressed"
	OutcomeIdle       = "idle"
	OutcomeActivated  = "activated"
)

// Metrics bundles the collectors; a nil *Metrics is valid and records nothing
type Metrics struct {
	edits            *prometheus.CounterVec
	particles        *prometheus.CounterVec
	particleFailures prometheus.Counter
	shakes           *prometheus.CounterVec
	poolHandles      prometheus.Gauge
	poolOutstanding  prometheus.Gauge
	comboStreak      prometheus.Gauge
}

// MustNewMetrics constructs and registers the collectors with reg
// Registration errors panic, mirroring promauto; tests should pass a fresh registry
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powermode",
			Name:      "edits_total",
			Help:      "Edit notifications seen by the trigger, by outcome.",
		}, []string{"outcome"}),
		particles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powermode",
			Name:      "particles_spawned_total",
			Help:      "Particle explosions started, by placement.",
		}, []string{"placement"}),
		particleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powermode",
			Name:      "particle_failures_total",
			Help:      "Edits whose particle spawning stopped on a host failure.",
		}),
		shakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powermode",
			Name:      "shake_sessions_total",
			Help:      "Shake sessions finished, by result.",
		}, []string{"result"}),
		poolHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powermode",
			Subsystem: "pool",
			Name:      "handles",
			Help:      "Particle handles constructed so far.",
		}),
		poolOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powermode",
			Subsystem: "pool",
			Name:      "outstanding",
			Help:      "Particle handles currently checked out.",
		}),
		comboStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powermode",
			Name:      "combo_streak",
			Help:      "Current combo length.",
		}),
	}
	reg.MustRegister(m.edits, m.particles, m.particleFailures, m.shakes,
		m.poolHandles, m.poolOutstanding, m.comboStreak)
	return m
}

func (m *Metrics) ObserveEdit(outcome string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(outcome).Inc()
}

// AddParticles counts n spawned particles; party selects the placement label
func (m *Metrics) AddParticles(n int, party bool) {
	if m == nil || n <= 0 {
		return
	}
	placement := "caret"
	if party {
		placement = "viewport"
	}
	m.particles.WithLabelValues(placement).Add(float64(n))
}

func (m *Metrics) ParticleFailure() {
	if m == nil {
		return
	}
	m.particleFailures.Inc()
}

func (m *Metrics) ShakeFinished(err error) {
	if m == nil {
		return
	}
	result := "completed"
	if err != nil {
		result = "aborted"
	}
	m.shakes.WithLabelValues(result).Inc()
}

func (m *Metrics) SetPool(created, outstanding int) {
	if m == nil {
		return
	}
	m.poolHandles.Set(float64(created))
	m.poolOutstanding.Set(float64(outstanding))
}

func (m *Metrics) SetStreak(n int) {
	if m == nil {
		return
	}
	m.comboStreak.Set(float64(n))
}

// PoolGrew records a new pool size; wired as the pool's grow hook
func (m *Metrics) PoolGrew(created int) {
	if m == nil {
		return
	}
	m.poolHandles.Set(float64(created))
}
