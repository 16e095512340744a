package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ChallengesIssued  prometheus.Counter
	Verifications     *prometheus.CounterVec
	ProfileMutations  *prometheus.CounterVec
	ProviderFallbacks *prometheus.CounterVec
}

// New registers the service collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "eration_otp_challenges_issued_total",
			Help: "Total number of OTP challenges issued",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eration_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		ProfileMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eration_profile_mutations_total",
			Help: "Profile changes by operation",
		}, []string{"operation"}),
		ProviderFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eration_uidai_fallbacks_total",
			Help: "Times the national-ID provider failed and the demo path was used",
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncrementChallenges() {
	if m == nil {
		return
	}
	m.ChallengesIssued.Inc()
}

func (m *Metrics) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveProfileMutation(operation string) {
	if m == nil {
		return
	}
	m.ProfileMutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementProviderFallback(stage string) {
	if m == nil {
		return
	}
	m.ProviderFallbacks.WithLabelValues(stage).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
