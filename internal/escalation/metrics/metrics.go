package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the escalation monitor.
type Metrics struct {
	// Escalations by reason
	Escalations *prometheus.CounterVec

	// Escalation attempts skipped because the request was already escalated
	EscalationsSkipped prometheus.Counter

	// Notification delivery attempts by recipient type and outcome
	Deliveries *prometheus.CounterVec

	// Notifications that exhausted their attempts
	TerminalFailures prometheus.Counter

	// Critical stock alerts raised by blood type
	CriticalStock *prometheus.CounterVec

	// Sweep duration and sub-check failures
	SweepDuration prometheus.Histogram
	CheckFailures *prometheus.CounterVec

	// Follow-up checks fired, by outcome: escalated, resolved
	FollowUps *prometheus.CounterVec
}

// New registers the escalation metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the escalation metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Escalations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_escalations_total",
			Help: "Total blood requests escalated by reason",
		}, []string{"reason"}),
		EscalationsSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_escalations_skipped_total",
			Help: "Escalation attempts on requests that were already escalated",
		}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_notification_deliveries_total",
			Help: "Notification delivery attempts by recipient type and outcome",
		}, []string{"recipient_type", "outcome"}),
		TerminalFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_notification_terminal_failures_total",
			Help: "Notifications marked failed after exhausting delivery attempts",
		}),
		CriticalStock: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_inventory_critical_alerts_total",
			Help: "Critical stock alerts raised by blood type",
		}, []string{"blood_type"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_escalation_sweep_duration_seconds",
			Help:    "Duration of the periodic escalation sweep",
			Buckets: prometheus.DefBuckets,
		}),
		CheckFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_escalation_check_failures_total",
			Help: "Sweep sub-checks that failed or panicked",
		}, []string{"check"}),
		FollowUps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_escalation_followups_total",
			Help: "Follow-up checks fired by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementEscalation(reason string) {
	if m != nil {
		m.Escalations.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementEscalationSkipped() {
	if m != nil {
		m.EscalationsSkipped.Inc()
	}
}

func (m *Metrics) IncrementDelivery(recipientType, outcome string) {
	if m != nil {
		m.Deliveries.WithLabelValues(recipientType, outcome).Inc()
	}
}

func (m *Metrics) IncrementTerminalFailure() {
	if m != nil {
		m.TerminalFailures.Inc()
	}
}

func (m *Metrics) IncrementCriticalStock(bloodType string) {
	if m != nil {
		m.CriticalStock.WithLabelValues(bloodType).Inc()
	}
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCheckFailure(check string) {
	if m != nil {
		m.CheckFailures.WithLabelValues(check).Inc()
	}
}

func (m *Metrics) IncrementFollowUp(outcome string) {
	if m != nil {
		m.FollowUps.WithLabelValues(outcome).Inc()
	}
}
