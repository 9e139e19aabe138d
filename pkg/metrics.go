package det01

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are registered on a private registry so that several runs can
// live in one process.
type Metrics struct {
	Registry        *prometheus.Registry
	eventsProcessed prometheus.Counter
	eventsFailed    prometheus.Counter
	rowsWritten     prometheus.Counter
	stepsProcessed  prometheus.Counter
	photonsDetected *prometheus.CounterVec
	eventDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "det01_events_processed_total",
			Help: "Total events simulated and tallied.",
		}),
		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "det01_events_failed_total",
			Help: "Total events discarded after a worker failure.",
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "det01_ntuple_rows_total",
			Help: "Total ntuple rows handed to the output writer.",
		}),
		stepsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "det01_steps_total",
			Help: "Total charged particle steps dispatched to sensitive detectors.",
		}),
		photonsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "det01_photons_detected_total",
			Help: "Total photoelectrons per detector.",
		}, []string{"detector"}),
		eventDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "det01_event_duration_seconds",
			Help:    "Histogram of per-event processing time on the workers.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}

	m.Registry.MustRegister(
		m.eventsProcessed,
		m.eventsFailed,
		m.rowsWritten,
		m.stepsProcessed,
		m.photonsDetected,
		m.eventDuration,
	)
	return m
}

func (m *Metrics) ObserveResult(result WorkerResult) {
	if m == nil {
		return
	}
	if result.Error {
		m.eventsFailed.Inc()
		return
	}
	m.eventsProcessed.Inc()
	m.stepsProcessed.Add(float64(result.Stats.Steps))
	m.eventDuration.Observe(result.Duration.Seconds())
	for id, pe := range result.Record.PE {
		m.photonsDetected.WithLabelValues(strconv.Itoa(id)).Add(float64(pe))
	}
}

func (m *Metrics) RowWritten() {
	if m == nil {
		return
	}
	m.rowsWritten.Inc()
}
