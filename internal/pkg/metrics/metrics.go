package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "court_booking"

// Metrics groups the engine's Prometheus collectors. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	reservations      *prometheus.CounterVec
	conflicts         prometheus.Counter
	gatewayErrors     *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	expired           prometheus.Counter
	notifications     *prometheus.CounterVec
	transitionLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		reservations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservation_transitions_total",
				Help:      "Reservation status transitions by resulting status.",
			},
			[]string{"status"},
		),
		conflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservation_conflicts_total",
				Help:      "Reservation attempts rejected because the slot was taken.",
			},
		),
		gatewayErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_errors_total",
				Help:      "Payment gateway call failures by operation.",
			},
			[]string{"op"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Payment notifications by outcome.",
			},
			[]string{"outcome"},
		),
		expired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservations_expired_total",
				Help:      "Pending reservations released by the reaper.",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification deliveries by result.",
			},
			[]string{"result"},
		),
		transitionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Latency of reservation commands.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.httpRequests,
			m.reservations,
			m.conflicts,
			m.gatewayErrors,
			m.webhookEvents,
			m.expired,
			m.notifications,
			m.transitionLatency,
		)
	}
	return m
}

func (m *Metrics) IncHTTP(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(status).Inc()
}

func (m *Metrics) IncConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) IncGatewayError(op string) {
	if m == nil {
		return
	}
	m.gatewayErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) IncWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncExpired() {
	if m == nil {
		return
	}
	m.expired.Inc()
}

func (m *Metrics) IncNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCommand(command string, seconds float64) {
	if m == nil {
		return
	}
	m.transitionLatency.WithLabelValues(command).Observe(seconds)
}
