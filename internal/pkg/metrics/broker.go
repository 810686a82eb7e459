package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Claim outcomes.
const (
	ClaimWon        = "won"
	ClaimLost       = "lost"
	ClaimBusy       = "busy"
	ClaimRolledBack = "rolled_back"
)

// BrokerMetrics counts assignment broker and delivery confirmation activity.
type BrokerMetrics struct {
	broadcasts   *prometheus.CounterVec
	candidates   prometheus.Histogram
	claims       *prometheus.CounterVec
	otps         *prometheus.CounterVec
	notifyErrors *prometheus.CounterVec
	reconciled   prometheus.Counter
	expired      prometheus.Counter
}

// NewBrokerMetrics registers the broker metrics on reg. A nil registerer yields a no-op recorder.
func NewBrokerMetrics(reg prometheus.Registerer) *BrokerMetrics {
	if reg == nil {
		return &BrokerMetrics{}
	}
	m := &BrokerMetrics{
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_broadcasts_total",
			Help: "Broadcast attempts by outcome (sent, no_candidates).",
		}, []string{"outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assignment_broadcast_candidates",
			Help:    "Number of workers a sub-order was offered to.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_claims_total",
			Help: "Claim attempts by outcome.",
		}, []string{"outcome"}),
		otps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_otp_total",
			Help: "Delivery code operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		notifyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Push notifications that could not be published, by event.",
		}, []string{"event"}),
		reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assignments_reconciled_total",
			Help: "Stale assignment records deleted by reconciliation.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assignments_expired_total",
			Help: "Unclaimed broadcasts removed by the expiry sweep.",
		}),
	}
	reg.MustRegister(m.broadcasts, m.candidates, m.claims, m.otps, m.notifyErrors, m.reconciled, m.expired)
	return m
}

func (m *BrokerMetrics) Broadcast(candidates int) {
	if m == nil || m.broadcasts == nil {
		return
	}
	if candidates == 0 {
		m.broadcasts.WithLabelValues("no_candidates").Inc()
		return
	}
	m.broadcasts.WithLabelValues("sent").Inc()
	m.candidates.Observe(float64(candidates))
}

func (m *BrokerMetrics) Claim(outcome string) {
	if m == nil || m.claims == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *BrokerMetrics) Otp(kind string, ok bool) {
	if m == nil || m.otps == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	m.otps.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}

func (m *BrokerMetrics) NotifyFailed(event string) {
	if m == nil || m.notifyErrors == nil {
		return
	}
	m.notifyErrors.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *BrokerMetrics) Reconciled(n int64) {
	if m == nil || m.reconciled == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}

func (m *BrokerMetrics) Expired(n int) {
	if m == nil || m.expired == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
