package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the intake and webhook flows.
type BookingMetrics struct {
	intakeTotal        *prometheus.CounterVec
	webhookTotal       *prometheus.CounterVec
	collaboratorErrors *prometheus.CounterVec
	webhookLatency     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		intakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "intake_total",
			Help:      "Booking intake requests by result",
		}, []string{"result"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "webhook_total",
			Help:      "Payment notifications by outcome",
		}, []string{"outcome"}),
		collaboratorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "collaborator_errors_total",
			Help:      "Swallowed calendar/messaging/email failures",
		}, []string{"collaborator"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of payment notification handling",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intakeTotal, m.webhookTotal, m.collaboratorErrors, m.webhookLatency)
	return m
}

func (m *BookingMetrics) ObserveIntake(result string) {
	if m == nil {
		return
	}
	m.intakeTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCollaboratorError(collaborator string) {
	if m == nil {
		return
	}
	m.collaboratorErrors.WithLabelValues(collaborator).Inc()
}

func (m *BookingMetrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.Observe(seconds)
}
