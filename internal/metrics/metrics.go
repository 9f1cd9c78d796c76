package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	clicks           *prometheus.CounterVec
	conversions      *prometheus.CounterVec
	payoutTransition *prometheus.CounterVec
	rateLimitAllowed prometheus.Counter
	rateLimitDenied  prometheus.Counter
}

// New registers the domain instruments on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cafelink_referral_clicks_total",
			Help: "Referral link redirects served.",
		}, []string{"code"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cafelink_conversions_total",
			Help: "Conversion events recorded, by dedup outcome.",
		}, []string{"outcome"}),
		payoutTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cafelink_payout_transitions_total",
			Help: "Payout entry state transitions.",
		}, []string{"transition"}),
		rateLimitAllowed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cafelink_ratelimit_allowed_total",
			Help: "Requests admitted by the rate limiter.",
		}),
		rateLimitDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cafelink_ratelimit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(
		m.clicks,
		m.conversions,
		m.payoutTransition,
		m.rateLimitAllowed,
		m.rateLimitDenied,
	)
	return m
}

func (m *Metrics) RecordClick(code string) {
	m.clicks.WithLabelValues(code).Inc()
}

// RecordConversion tags the event "recorded" or "deduplicated".
func (m *Metrics) RecordConversion(outcome string) {
	m.conversions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPayoutTransition(transition string) {
	m.payoutTransition.WithLabelValues(transition).Inc()
}

func (m *Metrics) RecordRateLimit(allowed bool) {
	if allowed {
		m.rateLimitAllowed.Inc()
		return
	}
	m.rateLimitDenied.Inc()
}
