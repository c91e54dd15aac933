package analytics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors of the analytics package.
type Metrics struct {
	EventsRecorded  *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	SummaryRequests *prometheus.CounterVec
	SummaryDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulseboard",
			Subsystem: "analytics",
			Name:      "events_recorded_total",
			Help:      "Tracked events written to the store.",
		}, []string{"kind"}),
		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulseboard",
			Subsystem: "analytics",
			Name:      "events_failed_total",
			Help:      "Tracked events that could not be written.",
		}, []string{"kind"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulseboard",
			Subsystem: "analytics",
			Name:      "events_dropped_total",
			Help:      "Requests not tracked, by reason.",
		}, []string{"reason"}),
		SummaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulseboard",
			Subsystem: "analytics",
			Name:      "summary_requests_total",
			Help:      "Summary requests by outcome.",
		}, []string{"outcome"}),
		SummaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pulseboard",
			Subsystem: "analytics",
			Name:      "summary_duration_seconds",
			Help:      "Time spent producing a summary.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.EventsRecorded, m.EventsFailed, m.EventsDropped, m.SummaryRequests, m.SummaryDuration)
	}
	return m
}
