package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OperationsStarted  *prometheus.CounterVec
	OperationsFinished *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	UnroutedEvents     *prometheus.CounterVec
	EngineErrors       *prometheus.CounterVec
}

// New creates the driver metrics and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vkapi_operations_started_total",
			Help: "Total number of enroll and verify operations started",
		}, []string{"kind"}),
		OperationsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vkapi_operations_finished_total",
			Help: "Total number of operations reaching a terminal state",
		}, []string{"kind", "state"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vkapi_operation_duration_seconds",
			Help:    "Time from capture start to terminal state",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		UnroutedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vkapi_unrouted_events_total",
			Help: "Total number of engine callbacks discarded without an active operation",
		}, []string{"event"}),
		EngineErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vkapi_engine_errors_total",
			Help: "Total number of error callbacks by vendor code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementStarted(kind string) {
	m.OperationsStarted.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFinished(kind, state string, start time.Time) {
	m.OperationsFinished.WithLabelValues(kind, state).Inc()
	m.OperationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementUnrouted(event string) {
	m.UnroutedEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) IncrementEngineError(code string) {
	m.EngineErrors.WithLabelValues(code).Inc()
}
