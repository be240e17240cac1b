// Package metrics exposes Prometheus instrumentation for the site: HTTP
// traffic, form submissions, outbound notifications, the campaign worker,
// and the diagnostic log sink.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every registered collector. One instance lives for the
// process lifetime and is passed to the components that record into it.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal            *prometheus.CounterVec

	PageRendersTotal     *prometheus.CounterVec
	FormSubmissionsTotal *prometheus.CounterVec

	NotificationsSentTotal   prometheus.Counter
	NotificationsFailedTotal prometheus.Counter
	OutboxPending            prometheus.Gauge

	ScheduledMessagesProcessedTotal prometheus.Counter
	LogEntriesTotal                 *prometheus.CounterVec

	UptimeSeconds prometheus.Gauge
	Goroutines    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with every collector registered on its
// own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trinexa_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trinexa_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trinexa_http_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"error_type"},
		),

		PageRendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trinexa_page_renders_total",
				Help: "Total number of public page renders",
			},
			[]string{"page"},
		),
		FormSubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trinexa_form_submissions_total",
				Help: "Total number of accepted form submissions",
			},
			[]string{"form"},
		),

		NotificationsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trinexa_notifications_sent_total",
				Help: "Total number of delivered email notifications",
			},
		),
		NotificationsFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trinexa_notifications_failed_total",
				Help: "Total number of permanently failed email notifications",
			},
		),
		OutboxPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trinexa_outbox_pending",
				Help: "Notifications waiting in the outbox, including deferred retries",
			},
		),

		ScheduledMessagesProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trinexa_scheduled_messages_processed_total",
				Help: "Total number of scheduled messages sent by the campaign worker",
			},
		),
		LogEntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trinexa_log_entries_total",
				Help: "Total number of diagnostic log entries by level",
			},
			[]string{"level"},
		),

		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trinexa_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trinexa_goroutines",
				Help: "Number of active goroutines",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.HTTPErrorsTotal,
		m.PageRendersTotal,
		m.FormSubmissionsTotal,
		m.NotificationsSentTotal,
		m.NotificationsFailedTotal,
		m.OutboxPending,
		m.ScheduledMessagesProcessedTotal,
		m.LogEntriesTotal,
		m.UptimeSeconds,
		m.Goroutines,
	)

	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
