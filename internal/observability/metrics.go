package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics aggregates the engine's Prometheus collectors. One instance is
// shared through fx so counters survive across modules.
type Metrics struct {
	ReservationsCreated  prometheus.Counter
	ReservationConflicts prometheus.Counter
	ReservationsExpired  prometheus.Counter
	MonitorRuns          prometheus.Counter
	MonitorFailures      prometheus.Counter
	NotificationsSent    prometheus.Counter
	MonitorDuration      prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReservationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "reservations_created_total",
			Help:      "Reservations successfully created.",
		}),
		ReservationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "reservation_conflicts_total",
			Help:      "Reservation attempts rejected because the box window was taken.",
		}),
		ReservationsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "reservations_expired_total",
			Help:      "Reservations swept into EXPIRED by the scheduler.",
		}),
		MonitorRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "monitor_runs_total",
			Help:      "Completed availability monitor sweeps.",
		}),
		MonitorFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "monitor_subscription_failures_total",
			Help:      "Subscriptions the monitor failed to evaluate.",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "warebox",
			Name:      "availability_notifications_total",
			Help:      "Availability notifications delivered to subscribers.",
		}),
		MonitorDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warebox",
			Name:      "monitor_sweep_duration_seconds",
			Help:      "Wall time of a full monitor sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

var Module = fx.Module("observability",
	fx.Provide(
		func() *prometheus.Registry { return prometheus.NewRegistry() },
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		New,
	),
)
