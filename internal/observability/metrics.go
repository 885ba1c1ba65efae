package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters the booking core reports. Collectors register
// on the default registry so gorm's prometheus plugin shares the same
// /metrics endpoint.
type Metrics struct {
	SettlementOutcomes *prometheus.CounterVec
	WebhookEvents      *prometheus.CounterVec
	RateCache          *prometheus.CounterVec
	RateFetchErrors    prometheus.Counter
	NotificationErrors prometheus.Counter
}

func NewMetrics() (*Metrics, error) {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

func NewMetricsWith(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		SettlementOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingportal",
			Subsystem: "settlement",
			Name:      "outcomes_total",
			Help:      "Settlement handler outcomes by kind.",
		}, []string{"outcome"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingportal",
			Subsystem: "payment",
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by provider and result.",
		}, []string{"provider", "result"}),
		RateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingportal",
			Subsystem: "rates",
			Name:      "cache_lookups_total",
			Help:      "Rate cache lookups by result.",
		}, []string{"result"}),
		RateFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingportal",
			Subsystem: "rates",
			Name:      "upstream_errors_total",
			Help:      "PMS rate fetches that failed or returned an invalid shape.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingportal",
			Subsystem: "notification",
			Name:      "errors_total",
			Help:      "Confirmation notices that could not be dispatched.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.SettlementOutcomes,
		m.WebhookEvents,
		m.RateCache,
		m.RateFetchErrors,
		m.NotificationErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NopMetrics returns collectors that are not registered anywhere.
func NopMetrics() *Metrics {
	m, _ := NewMetricsWith(prometheus.NewRegistry())
	return m
}
