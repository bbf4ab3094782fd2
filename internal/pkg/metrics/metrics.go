package metrics

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payroll_engine"

// Recorder counts engine operations by outcome and times them.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	batchItems *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by name and outcome kind.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items processed by batch operations by result.",
		}, []string{"operation", "result"}),
	}
	r.registry.MustRegister(r.operations, r.duration, r.batchItems)
	return r
}

// Observe records one finished operation. Call it as
// defer rec.Observe("payroll.generate", time.Now(), &err).
func (r *Recorder) Observe(operation string, start time.Time, errp *error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = string(apperror.KindOf(*errp))
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// BatchItems adds n items with the given result to a batch operation.
func (r *Recorder) BatchItems(operation, result string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.batchItems.WithLabelValues(operation, result).Add(float64(n))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
