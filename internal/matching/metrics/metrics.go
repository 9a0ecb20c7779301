package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching engine.
type Metrics struct {
	// Full FindCompatibleDonors latency
	MatchLatency prometheus.Histogram

	// Ranked candidates per invocation
	CandidatesFound prometheus.Histogram

	// Persisted DonorMatch rows by urgency
	MatchesPersisted *prometheus.CounterVec

	// Lookups that swallowed a store failure
	DegradedLookups prometheus.Counter

	// Donor responses by outcome: accepted, declined, stale
	Responses *prometheus.CounterVec
}

// New registers the matching metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the matching metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MatchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_matching_duration_seconds",
			Help:    "Duration of compatible donor matching including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CandidatesFound: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_matching_candidates",
			Help:    "Number of ranked donor candidates per matching invocation",
			Buckets: []float64{0, 1, 3, 5, 10, 25, 50, 100},
		}),
		MatchesPersisted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_matching_matches_persisted_total",
			Help: "Total donor matches persisted by request urgency",
		}, []string{"urgency"}),
		DegradedLookups: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_matching_degraded_lookups_total",
			Help: "Donor lookups that returned an empty result because the store failed",
		}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_matching_donor_responses_total",
			Help: "Donor responses to matches by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveMatchLatency(d time.Duration) {
	if m != nil {
		m.MatchLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.CandidatesFound.Observe(float64(n))
	}
}

func (m *Metrics) AddMatchesPersisted(urgency string, n int) {
	if m != nil {
		m.MatchesPersisted.WithLabelValues(urgency).Add(float64(n))
	}
}

func (m *Metrics) IncrementDegradedLookup() {
	if m != nil {
		m.DegradedLookups.Inc()
	}
}

func (m *Metrics) IncrementResponse(outcome string) {
	if m != nil {
		m.Responses.WithLabelValues(outcome).Inc()
	}
}
