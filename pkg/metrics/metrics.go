package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics prometheus-коллекторы сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SweepRunsTotal       prometheus.Counter
	BookingsExpiredTotal prometheus.Counter
	RemindersSentTotal   prometheus.Counter

	SyncRunsTotal     prometheus.Counter
	SyncFailuresTotal prometheus.Counter
}

// New создает и регистрирует коллекторы метрик
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		SweepRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "sweep_runs_total",
			Help:        "Total number of expiry sweeper ticks",
			ConstLabels: labels,
		}),
		BookingsExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_expired_total",
			Help:        "Total number of bookings expired by the sweeper",
			ConstLabels: labels,
		}),
		RemindersSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "lesson_reminders_sent_total",
			Help:        "Total number of lesson-start reminders sent",
			ConstLabels: labels,
		}),
		SyncRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "snapshot_sync_runs_total",
			Help:        "Total number of snapshot sync cycles",
			ConstLabels: labels,
		}),
		SyncFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "snapshot_sync_failures_total",
			Help:        "Total number of failed snapshot sync cycles",
			ConstLabels: labels,
		}),
	}
}
