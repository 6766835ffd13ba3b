package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for lead capture.
type Metrics struct {
	LeadsCaptured        *prometheus.CounterVec
	ValidationFailures   *prometheus.CounterVec
	SubmitDuration       prometheus.Histogram
	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	NotificationsDropped prometheus.Counter
	EventsPublishFailed  prometheus.Counter
}

// New registers lead metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LeadsCaptured: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landing_leads_captured_total",
			Help: "Leads persisted, by capture source",
		}, []string{"source"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landing_lead_validation_failures_total",
			Help: "Rejected lead submissions, by offending field",
		}, []string{"field"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "landing_lead_submit_duration_seconds",
			Help:    "Duration of the submit-lead flow including synchronous notification",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}),
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "landing_lead_notifications_sent_total",
			Help: "Owner notifications delivered",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "landing_lead_notifications_failed_total",
			Help: "Owner notifications that failed or were skipped by the circuit breaker",
		}),
		NotificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "landing_lead_notifications_dropped_total",
			Help: "Async notifications dropped because the queue was full",
		}),
		EventsPublishFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "landing_lead_events_publish_failed_total",
			Help: "lead.captured events that could not be published",
		}),
	}
}

func (m *Metrics) IncrementCaptured(source string) {
	m.LeadsCaptured.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementValidationFailure(field string) {
	if field == "" {
		field = "unknown"
	}
	m.ValidationFailures.WithLabelValues(field).Inc()
}

// ObserveSubmit records the duration of a Submit call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementNotificationSent()    { m.NotificationsSent.Inc() }
func (m *Metrics) IncrementNotificationFailed()  { m.NotificationsFailed.Inc() }
func (m *Metrics) IncrementNotificationDropped() { m.NotificationsDropped.Inc() }
func (m *Metrics) IncrementEventPublishFailed()  { m.EventsPublishFailed.Inc() }
